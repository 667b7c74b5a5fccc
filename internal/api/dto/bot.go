package dto

import "github.com/go-playground/validator/v10"

type CreateBotRequest struct {
	BotID       string  `json:"bot_id"`
	AccountID   string  `json:"account_id"`
	Symbol      string  `json:"symbol" validate:"required"`
	Side        string  `json:"side" validate:"required,oneof=BUY SELL"`
	Leverage    int     `json:"leverage" validate:"required,gte=1,lte=125"`
	OrderAmount float64 `json:"order_amount" validate:"required,gt=0"`
	StopLoss    float64 `json:"stop_loss" validate:"gte=0"`   // percent, 0 = disabled
	TakeProfit  float64 `json:"take_profit" validate:"gte=0"` // percent, 0 = disabled
}

type ToggleBotRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// WebhookRequest is the wire shape shared with the external alerting
// tool: exactly three keys, no nesting.
type WebhookRequest struct {
	BotID      string `json:"bot_id" validate:"required"`
	Passphrase string `json:"passphrase" validate:"required"`
	Action     string `json:"action" validate:"required,oneof=entry exit"`
}

type AccountPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Exchange  string `json:"exchange" validate:"required,oneof=BINANCE BYBIT OKX KUCOIN"`
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

// UpdateConfigRequest is a shallow partial: absent keys leave the current
// value untouched, a present accounts list replaces the stored one.
type UpdateConfigRequest struct {
	Accounts          *[]AccountPayload `json:"accounts" validate:"omitempty,dive"`
	WebhookPassphrase *string           `json:"webhookPassphrase"`
	WebhookURL        *string           `json:"webhookUrl"`
}

var Validate = validator.New()
