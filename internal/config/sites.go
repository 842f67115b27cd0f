package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

// sitesFile is the on-disk shape of a site table:
//
//	[[sites]]
//	code = "ATL"
//	low = 18
//	high = 32
//
//	[machines]
//	19 = "Machine 4"
type sitesFile struct {
	Sites    []domain.Site     `toml:"sites"`
	Machines map[string]string `toml:"machines"`
}

// LoadSiteTable reads a TOML site table. An empty path returns the built-in
// defaults; a file without [machines] keeps the default machine labels.
func LoadSiteTable(path string) (domain.SiteTable, error) {
	table := domain.DefaultSiteTable()
	if path == "" {
		return table, nil
	}

	var f sitesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return domain.SiteTable{}, fmt.Errorf("sites load failed (%s): %w", path, err)
	}

	if len(f.Sites) > 0 {
		for i, s := range f.Sites {
			if err := validateSite(s); err != nil {
				return domain.SiteTable{}, fmt.Errorf("sites[%d] invalid: %w", i, err)
			}
		}
		table.Sites = f.Sites
	}

	if len(f.Machines) > 0 {
		machines := make(map[int]string, len(f.Machines))
		for k, v := range f.Machines {
			bin, err := strconv.Atoi(k)
			if err != nil {
				return domain.SiteTable{}, fmt.Errorf("machines key %q is not a bin number", k)
			}
			machines[bin] = v
		}
		table.Machines = machines
	}

	return table, nil
}

func validateSite(s domain.Site) error {
	if s.Code == "" {
		return errors.New("code is required")
	}
	if s.Low > s.High {
		return fmt.Errorf("low %d exceeds high %d", s.Low, s.High)
	}
	return nil
}
