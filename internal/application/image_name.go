package application

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewImageName returns "<uuid>_<basename>" for an uploaded file name.
// Directory components are stripped, including Windows-style ones.
func NewImageName(original string) string {
	return uuid.NewString() + "_" + baseName(original)
}

func baseName(original string) string {
	b := path.Base(strings.ReplaceAll(original, `\`, "/"))
	switch b {
	case ".", "..", "/", "":
		return "upload"
	}
	return b
}
