// Package manifest builds the release.json document addon updaters
// read to find the right archive for each game flavor.
package manifest

import (
	"encoding/json"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/wowpub/cfrelease/pkg/curse"
)

// FileName release.json is published under, next to the archives.
const FileName = "release.json"

// DefaultFlavor stands in when a game version's type id is missing
// from the version-type registry.
const DefaultFlavor = "mainline"

type Target struct {
	Flavor    string `json:"flavor"`
	Interface int    `json:"interface"`
}

type Entry struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Filename string   `json:"filename"`
	NoLib    bool     `json:"nolib"`
	Metadata []Target `json:"metadata"`
}

type Manifest struct {
	Releases []Entry `json:"releases"`
}

// Release describes one downloaded build heading into the manifest.
type Release struct {
	Name     string
	Filename string
	Versions []curse.GameVersion
}

var versionRe = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Version pulls the first three-part dotted number out of an archive
// name, or "" when there is none.
func Version(filename string) string {
	return versionRe.FindString(filename)
}

// Build assembles the manifest. Entries keep the order of rels, and
// each entry's metadata keeps the declared order of its game versions.
func Build(rels []Release, types map[int]string) (*Manifest, error) {
	m := &Manifest{Releases: []Entry{}}

	for _, r := range rels {
		md := make([]Target, 0, len(r.Versions))

		for _, gv := range r.Versions {
			iface, err := gv.Interface()
			if err != nil {
				return nil, errors.Wrapf(err, "build %s", r.Filename)
			}

			fv, ok := types[gv.TypeID]
			if !ok {
				fv = DefaultFlavor
			}

			md = append(md, Target{Flavor: fv, Interface: iface})
		}

		m.Releases = append(m.Releases, Entry{
			Name:     r.Name,
			Version:  Version(r.Filename),
			Filename: r.Filename,
			Metadata: md,
		})
	}

	return m, nil
}

func (m *Manifest) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(m)
}
