package config

import (
	"fmt"
	"os"
	"strings"
)

// proxyOverrides maps each canonical proxy variable to its npm-style
// sources, most specific first.
var proxyOverrides = []struct {
	name    string
	sources []string
}{
	{"HTTPS_PROXY", []string{"npm_config_https_proxy", "npm_config_proxy"}},
	{"HTTP_PROXY", []string{"npm_config_http_proxy", "npm_config_proxy"}},
	{"NO_PROXY", []string{"npm_config_no_proxy"}},
}

// ApplyProxyEnv sets HTTPS_PROXY, HTTP_PROXY and NO_PROXY from their npm
// equivalents when neither the upper nor the lower case form is set. It
// returns the names it set. Nil functions use the process environment.
func ApplyProxyEnv(lookup func(string) (string, bool), setenv func(key, value string) error) ([]string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if setenv == nil {
		setenv = os.Setenv
	}

	present := func(name string) bool {
		v, ok := lookup(name)
		return ok && v != ""
	}

	var applied []string
	for _, o := range proxyOverrides {
		if present(o.name) || present(strings.ToLower(o.name)) {
			continue
		}
		for _, src := range o.sources {
			v, ok := lookup(src)
			if !ok || v == "" {
				continue
			}
			if err := setenv(o.name, v); err != nil {
				return applied, fmt.Errorf("set %s: %w", o.name, err)
			}
			applied = append(applied, o.name)
			break
		}
	}
	return applied, nil
}
