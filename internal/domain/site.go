package domain

import "strconv"

// Site is a named block of consecutive bins handled by one facility.
type Site struct {
	Code string `toml:"code"`
	Low  int    `toml:"low"`
	High int    `toml:"high"`
}

// SiteTable maps bins to display labels.
type SiteTable struct {
	Sites    []Site         `toml:"sites"`
	Machines map[int]string `toml:"-"`
}

// DefaultSiteTable returns the built-in Chattanooga / Atlanta / Orlando
// assignment with the Atlanta machine numbering.
func DefaultSiteTable() SiteTable {
	return SiteTable{
		Sites: []Site{
			{Code: "CHA", Low: 5, High: 17},
			{Code: "ATL", Low: 18, High: 32},
			{Code: "MCO", Low: 33, High: 36},
		},
		Machines: map[int]string{
			19: "Machine 4",
			20: "Machine 9",
			21: "Machine 5",
			22: "Machine 6",
			23: "Machine 7",
			24: "Machine 10",
			25: "Machine 11",
			26: "Machine 12",
			27: "Machine 13",
			28: "Machine 14",
			29: "Machine 15",
			30: "Machine 16",
			31: "Machine 17",
			32: "Machine 18",
		},
	}
}

// site returns the first site whose range holds bin.
func (t SiteTable) site(bin int) (Site, bool) {
	for _, s := range t.Sites {
		if bin >= s.Low && bin <= s.High {
			return s, true
		}
	}
	return Site{}, false
}

// Label renders a bin as "<SITE> <n>", or "BIN <n>" outside every site.
// Non-numeric bins yield "".
func (t SiteTable) Label(bin string) string {
	n, ok := binNumber(bin)
	if !ok {
		return ""
	}
	if s, ok := t.site(n); ok {
		return s.Code + " " + strconv.Itoa(n)
	}
	return "BIN " + strconv.Itoa(n)
}

// Class returns the CSS-style class for the bin's site, e.g. "site-ATL".
func (t SiteTable) Class(bin string) string {
	n, ok := binNumber(bin)
	if !ok {
		return ""
	}
	if s, ok := t.site(n); ok {
		return "site-" + s.Code
	}
	return ""
}

// MachineLabel returns the machine name configured for bin, if any.
func (t SiteTable) MachineLabel(bin string) (string, bool) {
	n, ok := binNumber(bin)
	if !ok {
		return "", false
	}
	m, ok := t.Machines[n]
	return m, ok
}

func binNumber(bin string) (int, bool) {
	n, err := strconv.Atoi(NumericBin(bin))
	if err != nil {
		return 0, false
	}
	return n, true
}
