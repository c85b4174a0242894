package importer

import (
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/normalize"
)

// Date policies. Strict skips rows with unparseable dates, lenient stamps
// them with the current time.
const (
	DatePolicyStrict  = "strict"
	DatePolicyLenient = "lenient"
)

// ColumnLabels names the header cells the importer binds to. Date, user and
// the facility pair are required; comment and activity are optional.
type ColumnLabels struct {
	Date            string `yaml:"date"`
	User            string `yaml:"user"`
	FacilityName    string `yaml:"facility_name"`
	FacilityAddress string `yaml:"facility_address"`
	Comment         string `yaml:"comment"`
	Activity        string `yaml:"activity"`
}

// Profile describes one source spreadsheet format. Distributors hand over
// files with different delimiters and header spellings; a profile pins the
// mapping down instead of hardcoding it.
type Profile struct {
	Name             string       `yaml:"name"`
	Delimiter        string       `yaml:"delimiter"`
	DatePolicy       string       `yaml:"date_policy"`
	FlavorSeparators string       `yaml:"flavor_separators"`
	SwapThreshold    int          `yaml:"swap_threshold"`
	Columns          ColumnLabels `yaml:"columns"`
	// LineColumns maps a header label to the product line it carries,
	// e.g. "Bliss (шт)" headers bind here through the prefix fallback.
	LineColumns map[string]string `yaml:"line_columns"`
}

// DefaultProfile matches the distributor export the team receives most
// often: semicolon-delimited, Russian headers, one column per product line.
func DefaultProfile() *Profile {
	return &Profile{
		Name:             "default",
		Delimiter:        ";",
		DatePolicy:       DatePolicyStrict,
		FlavorSeparators: ",",
		SwapThreshold:    normalize.DefaultSwapThreshold,
		Columns: ColumnLabels{
			Date:            "Дата",
			User:            "Амбассадор",
			FacilityName:    "Название точки",
			FacilityAddress: "Адрес",
			Comment:         "Комментарий",
			Activity:        "Тип активности",
		},
		LineColumns: map[string]string{
			"Bliss":      "Bliss",
			"White Line": "White Line",
			"Black Line": "Black Line",
			"Cigar Line": "Cigar Line",
		},
	}
}

// LoadProfile reads a profile from a YAML file. Fields left empty fall back
// to the default profile's values.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read profile")
	}
	p := DefaultProfile()
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, errors.Wrap(err, "parse profile")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) Validate() error {
	switch p.DatePolicy {
	case DatePolicyStrict, DatePolicyLenient:
	default:
		return errors.Errorf("profile %q: invalid date policy %q", p.Name, p.DatePolicy)
	}
	if p.Columns.Date == "" || p.Columns.User == "" || p.Columns.FacilityName == "" || p.Columns.FacilityAddress == "" {
		return errors.Errorf("profile %q: date, user, facility_name and facility_address column labels are required", p.Name)
	}
	if len(p.LineColumns) == 0 {
		return errors.Errorf("profile %q: at least one line column is required", p.Name)
	}
	return nil
}

// DelimiterRune returns the CSV delimiter, defaulting to a semicolon.
func (p *Profile) DelimiterRune() rune {
	for _, r := range p.Delimiter {
		return r
	}
	return ';'
}
