package lambdahttp

import (
	"net"
	"strings"
)

// Subdomains splits host into its subdomain labels, rightmost-first, after
// dropping the trailing offset labels that make up the registered domain.
// For "tobi.ferrets.example.com" with offset 2 the result is
// ["ferrets", "tobi"]. IP literal hosts have no subdomains and yield nil.
// The offset is always supplied by the caller; there is no package-level
// default to mutate.
func Subdomains(host string, offset int) []string {
	if host == "" {
		return nil
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if net.ParseIP(host) != nil {
		return nil
	}
	if offset < 0 {
		offset = 0
	}

	labels := strings.Split(host, ".")
	if len(labels) <= offset {
		return nil
	}

	labels = labels[:len(labels)-offset]
	subdomains := make([]string, 0, len(labels))
	for i := len(labels) - 1; i >= 0; i-- {
		subdomains = append(subdomains, labels[i])
	}
	return subdomains
}
