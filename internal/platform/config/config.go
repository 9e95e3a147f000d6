// Package config reads prefixed environment variables for modules and commands
// Must* accessors panic through the logger, May* accessors warn and fall back
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"storeuptime/internal/platform/logger"
)

// Conf is a prefixed view over the environment, e.g. New().Prefix("CORE_API_")
type Conf struct{ prefix string }

// New returns an unprefixed Conf
func New() Conf { return Conf{} }

// Prefix appends p to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

func (c Conf) missing(k string) {
	logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
}

func (c Conf) invalid(k, v, want string) {
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Msg("invalid env; expected " + want)
}

// MustString returns the value or panics when empty
func (c Conf) MustString(k string) string {
	v := c.get(k)
	if v == "" {
		c.missing(k)
	}
	return v
}

// MustInt returns the integer value or panics
func (c Conf) MustInt(k string) int {
	s := c.MustString(k)
	v, err := strconv.Atoi(s)
	if err != nil {
		c.invalid(k, s, "int")
	}
	return v
}

// MustDuration returns the duration value or panics
func (c Conf) MustDuration(k string) time.Duration {
	s := c.MustString(k)
	d, err := time.ParseDuration(s)
	if err != nil {
		c.invalid(k, s, "duration like 30s or 5m")
	}
	return d
}

// MustPort returns ":<port>" for a value in 1..65535 or panics
func (c Conf) MustPort(k string) string {
	s := c.MustString(k)
	if p, err := strconv.Atoi(s); err != nil || p < 1 || p > 65535 {
		c.invalid(k, s, "TCP port 1..65535")
	}
	return ":" + s
}

// MayString returns the value or def
func (c Conf) MayString(k, def string) string {
	if v := c.get(k); v != "" {
		return v
	}
	return def
}

// MayInt returns the integer value or def, warning when the value is unparsable
func (c Conf) MayInt(k string, def int) int {
	s := c.get(k)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Int("default", def).Msg("invalid int; using default")
		return def
	}
	return v
}

// MayBool returns the bool value or def, warning when the value is unparsable
func (c Conf) MayBool(k string, def bool) bool {
	s := c.get(k)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
		return def
	}
	return v
}

// MayDuration returns the duration value or def, warning when the value is unparsable
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	s := c.get(k)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
		return def
	}
	return d
}

// MayCSV splits a comma list, dropping blanks; def when nothing remains
func (c Conf) MayCSV(k string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.get(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the lowercased value when it is one of allowed, def when unset,
// and panics otherwise
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := strings.ToLower(c.MayString(k, def))
	for _, a := range allowed {
		if v == strings.ToLower(a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
