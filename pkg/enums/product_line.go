package enums

// ProductLine distinguishes the two catalog verticals. Software plans are
// time-bound and never stock-limited; cartridge products carry finite stock.
type ProductLine string

const (
	ProductLineSoftware  ProductLine = "software"
	ProductLineCartridge ProductLine = "cartridge"
)

func (l ProductLine) IsValid() bool {
	switch l {
	case ProductLineSoftware, ProductLineCartridge:
		return true
	}
	return false
}

// SerialPrefix returns the serial-code prefix issued for the line.
func (l ProductLine) SerialPrefix() string {
	if l == ProductLineCartridge {
		return "CT"
	}
	return "SN"
}
