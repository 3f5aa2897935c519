package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnyProfessional is the sentinel roster entry meaning "no preference".
// Appointments booked under it do not occupy a named professional's slot.
const AnyProfessional = "Qualquer um"

// Catalog holds the bookable roster and service menu. Both are configuration
// data, not logic: changing the roster must not require code changes.
type Catalog struct {
	professionals []string
	services      []string
}

// DefaultProfessionals mirrors the shop's current roster.
func DefaultProfessionals() []string {
	return []string{"Emanuele", "Carlos", "Rafael"}
}

// DefaultServices mirrors the shop's current service menu.
func DefaultServices() []string {
	return []string{"Corte de cabelo", "Corte de barba", "Sobrancelha"}
}

// New builds a catalog from explicit lists. Empty lists fall back to defaults.
func New(professionals, services []string) *Catalog {
	if len(professionals) == 0 {
		professionals = DefaultProfessionals()
	}
	if len(services) == 0 {
		services = DefaultServices()
	}
	return &Catalog{professionals: professionals, services: services}
}

// FromJSON builds a catalog from JSON array config values, e.g.
// ROSTER_JSON=["Ana","Bia"]. Empty strings select the defaults.
func FromJSON(rosterJSON, servicesJSON string) (*Catalog, error) {
	var professionals, services []string
	if strings.TrimSpace(rosterJSON) != "" {
		if err := json.Unmarshal([]byte(rosterJSON), &professionals); err != nil {
			return nil, fmt.Errorf("catalog: parse roster json: %w", err)
		}
	}
	if strings.TrimSpace(servicesJSON) != "" {
		if err := json.Unmarshal([]byte(servicesJSON), &services); err != nil {
			return nil, fmt.Errorf("catalog: parse services json: %w", err)
		}
	}
	return New(professionals, services), nil
}

// Professionals returns the named roster, without the sentinel.
func (c *Catalog) Professionals() []string {
	return c.professionals
}

// Services returns the service menu.
func (c *Catalog) Services() []string {
	return c.services
}

// ProfessionalByCode resolves a numeric menu code. Codes are 1-based over the
// roster; the code after the last professional selects AnyProfessional.
func (c *Catalog) ProfessionalByCode(input string) (string, bool) {
	code, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return "", false
	}
	if code >= 1 && code <= len(c.professionals) {
		return c.professionals[code-1], true
	}
	if code == len(c.professionals)+1 {
		return AnyProfessional, true
	}
	return "", false
}

// ServicesByCodes resolves a comma-separated list of menu codes into service
// names. Duplicates collapse; any unknown code fails the whole selection.
func (c *Catalog) ServicesByCodes(input string) ([]string, bool) {
	parts := strings.Split(input, ",")
	seen := make(map[string]bool)
	var services []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil || code < 1 || code > len(c.services) {
			return nil, false
		}
		name := c.services[code-1]
		if !seen[name] {
			seen[name] = true
			services = append(services, name)
		}
	}
	if len(services) == 0 {
		return nil, false
	}
	return services, true
}

// RosterMenu renders the numbered professional menu, sentinel last.
func (c *Catalog) RosterMenu() string {
	var sb strings.Builder
	for i, name := range c.professionals {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, name)
	}
	fmt.Fprintf(&sb, "%d. %s", len(c.professionals)+1, AnyProfessional)
	return sb.String()
}

// ServicesMenu renders the numbered service menu.
func (c *Catalog) ServicesMenu() string {
	var sb strings.Builder
	for i, name := range c.services {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, name)
	}
	return sb.String()
}
