package catalog

import "strings"

// Filter keeps services whose name or description contains term,
// ignoring case. An empty term keeps everything.
func Filter(services []Service, term string) []Service {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return services
	}
	out := make([]Service, 0, len(services))
	for _, s := range services {
		if strings.Contains(strings.ToLower(s.Name), term) || strings.Contains(strings.ToLower(s.Description), term) {
			out = append(out, s)
		}
	}
	return out
}
