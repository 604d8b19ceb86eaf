// Package config loads the optional ambient extras this server accepts
// beyond the required <port> <password> invocation: an HCL file (the
// teacher's own configuration format) supplying a MOTD path, a server
// name override, and a hostmask ban list.
package config

import (
	"io/ioutil"

	"github.com/hashicorp/hcl"
	"github.com/ryanuber/go-glob"
)

// Extra holds everything an HCL config file may contribute. Every field
// is optional; no file (an empty path) or missing fields leave the server
// running with the spec's bare defaults. A named file that cannot be read
// or parsed is an error.
type Extra struct {
	ServerName string   `hcl:"server_name"`
	MOTDPath   string   `hcl:"motd"`
	Bans       []string `hcl:"bans"`
}

// Load reads and parses an HCL file at path. A path of "" returns a zero
// Extra with no error — the config file is optional.
func Load(path string) (Extra, error) {
	var e Extra
	if path == "" {
		return e, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return e, err
	}
	if err := hcl.Unmarshal(data, &e); err != nil {
		return e, err
	}
	return e, nil
}

// BanList is the small hostmask matcher built on the ban patterns an
// Extra config supplies, mirroring the teacher's own confdata.Ban check.
type BanList struct {
	patterns []string
}

// NewBanList builds a BanList from a set of nick!user@host glob patterns.
func NewBanList(patterns []string) BanList {
	return BanList{patterns: patterns}
}

// Matches reports whether hostmask (typically "nick!user@host") matches
// any configured ban pattern.
func (b BanList) Matches(hostmask string) (pattern string, banned bool) {
	for _, p := range b.patterns {
		if glob.Glob(p, hostmask) {
			return p, true
		}
	}
	return "", false
}
