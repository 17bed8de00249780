package curse

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Release channels CurseForge assigns to uploaded files. Only stable
// releases are mirrored.
const (
	ReleaseTypeRelease = 1
	ReleaseTypeBeta    = 2
	ReleaseTypeAlpha   = 3
)

type VersionType struct {
	ID     int    `json:"id"`
	GameID int    `json:"gameId"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

type GameVersion struct {
	Name    string `json:"gameVersionName"`
	Padded  string `json:"gameVersionPadded"`
	Version string `json:"gameVersion"`
	TypeID  int    `json:"gameVersionTypeId"`
}

// Interface converts the dotted display name into the numeric TOC
// interface value, so "4.4.0" becomes 40400. A missing patch component
// counts as zero.
func (v GameVersion) Interface() (int, error) {
	parts := strings.Split(v.Name, ".")
	if len(parts) < 2 {
		return 0, errors.Errorf("malformed game version: %q", v.Name)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed game version: %q", v.Name)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed game version: %q", v.Name)
	}

	patch := 0
	if len(parts) > 2 {
		patch, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, errors.Wrapf(err, "malformed game version: %q", v.Name)
		}
	}

	return major*10000 + minor*100 + patch, nil
}

type File struct {
	ID                   int           `json:"id"`
	DisplayName          string        `json:"displayName"`
	FileName             string        `json:"fileName"`
	ReleaseType          int           `json:"releaseType"`
	FileLength           int64         `json:"fileLength"`
	DownloadURL          string        `json:"downloadUrl"`
	SortableGameVersions []GameVersion `json:"sortableGameVersions"`
}

type FileIndex struct {
	GameVersion       string `json:"gameVersion"`
	FileID            int    `json:"fileId"`
	Filename          string `json:"filename"`
	ReleaseType       int    `json:"releaseType"`
	GameVersionTypeID int    `json:"gameVersionTypeId"`
}

type Mod struct {
	ID                 int         `json:"id"`
	Name               string      `json:"name"`
	Slug               string      `json:"slug"`
	LatestFiles        []File      `json:"latestFiles"`
	LatestFilesIndexes []FileIndex `json:"latestFilesIndexes"`
}

// LatestReleases picks the stable builds out of LatestFiles, in the
// order LatestFilesIndexes lists them. An index can reference the same
// file for several game versions, so duplicates collapse to the first
// mention.
func (m *Mod) LatestReleases() []File {
	stable := make(map[int]File, len(m.LatestFiles))

	for _, f := range m.LatestFiles {
		if f.ReleaseType != ReleaseTypeRelease {
			continue
		}

		stable[f.ID] = f
	}

	var (
		ordered []File
		seen    = map[int]struct{}{}
	)

	for _, idx := range m.LatestFilesIndexes {
		f, ok := stable[idx.FileID]
		if !ok {
			continue
		}

		if _, dup := seen[idx.FileID]; dup {
			continue
		}

		seen[idx.FileID] = struct{}{}
		ordered = append(ordered, f)
	}

	return ordered
}
