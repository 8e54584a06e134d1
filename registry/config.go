package registry

// Config lists the instruments and accounts known to the venue. Both tables
// are loaded once at startup.
type Config struct {
	Symbols  []string `long:"symbol" description:"Ticker of a tradable instrument, repeat for each"`
	Accounts []uint32 `long:"account" description:"Account id allowed to trade, repeat for each"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Symbols:  []string{"AAPL", "MSFT", "TSLA"},
		Accounts: []uint32{1, 2, 3},
	}
}
