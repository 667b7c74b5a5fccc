package settings

type Exchange string

const (
	ExchangeBinance Exchange = "BINANCE"
	ExchangeBybit   Exchange = "BYBIT"
	ExchangeOKX     Exchange = "OKX"
	ExchangeKucoin  Exchange = "KUCOIN"
)

// ExchangeAccount holds opaque venue credentials. The keys are never used
// for real calls; the simulated venue only needs them to exist.
type ExchangeAccount struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Exchange  Exchange `json:"exchange"`
	APIKey    string   `json:"apiKey"`
	APISecret string   `json:"apiSecret"`
}

// SystemConfig is the singleton dashboard configuration.
type SystemConfig struct {
	Accounts          []ExchangeAccount `json:"accounts"`
	WebhookPassphrase string            `json:"webhookPassphrase"`
	WebhookURL        string            `json:"webhookUrl"`
}

// Update carries a partial configuration change. Nil fields are left
// untouched; a non-nil Accounts replaces the whole list.
type Update struct {
	Accounts          *[]ExchangeAccount
	WebhookPassphrase *string
	WebhookURL        *string
}
