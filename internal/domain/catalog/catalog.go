package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/utils"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
	ErrInvalidCatalog    = errors.New("invalid catalog")
)

// Catalog is the set of installed apps and their launcher order
type Catalog struct {
	Apps     []system.AppSpec
	HomeGrid []system.AppID
}

// entry and file carry tags for every decoder we accept
type entry struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
	Icon string `json:"icon" yaml:"icon" toml:"icon"`
}

type file struct {
	Apps     []entry  `json:"apps" yaml:"apps" toml:"apps"`
	HomeGrid []string `json:"homeGrid" yaml:"homeGrid" toml:"homeGrid"`
}

// Builtin returns the stock catalog
func Builtin() Catalog {
	apps := []system.AppSpec{
		{ID: "phone", Name: "Phone", Icon: "📞"},
		{ID: "messages", Name: "Messages", Icon: "💬"},
		{ID: "camera", Name: "Camera", Icon: "📷"},
		{ID: "gallery", Name: "Gallery", Icon: "🖼️"},
		{ID: "clock", Name: "Clock", Icon: "⏰"},
		{ID: "calculator", Name: "Calculator", Icon: "🧮"},
		{ID: "files", Name: "Files", Icon: "📁"},
		{ID: "contacts", Name: "Contacts", Icon: "👤"},
		{ID: "settings", Name: "Settings", Icon: "⚙️"},
		{ID: "playstore", Name: "Play Store", Icon: "▶️"},
	}
	grid := make([]system.AppID, len(apps))
	for i, app := range apps {
		grid[i] = app.ID
	}
	return Catalog{Apps: apps, HomeGrid: grid}
}

// LoadFile reads a catalog file, picking the decoder by extension
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	cat, err := Parse(data, ext)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cat, nil
}

// Parse decodes and validates catalog content. format is a file extension
// with or without the leading dot.
func Parse(data []byte, format string) (Catalog, error) {
	var f file
	var err error

	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &f)
	case "toml":
		err = toml.Unmarshal(data, &f)
	case "json":
		err = sonic.ConfigStd.Unmarshal(data, &f)
	default:
		return Catalog{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return f.build()
}

func (f file) build() (Catalog, error) {
	if len(f.Apps) == 0 {
		return Catalog{}, fmt.Errorf("%w: no apps", ErrInvalidCatalog)
	}

	cat := Catalog{Apps: make([]system.AppSpec, 0, len(f.Apps))}
	known := make(map[system.AppID]bool, len(f.Apps))

	for i, e := range f.Apps {
		if err := validateEntry(e); err != nil {
			return Catalog{}, fmt.Errorf("%w: app %d: %v", ErrInvalidCatalog, i, err)
		}
		id := system.AppID(e.ID)
		if id == system.SystemAppID {
			return Catalog{}, fmt.Errorf("%w: app id %q is reserved", ErrInvalidCatalog, e.ID)
		}
		if known[id] {
			return Catalog{}, fmt.Errorf("%w: duplicate app %q", ErrInvalidCatalog, e.ID)
		}
		known[id] = true
		cat.Apps = append(cat.Apps, system.AppSpec{ID: id, Name: e.Name, Icon: e.Icon})
	}

	// Without an explicit grid every app goes on the home screen
	if f.HomeGrid == nil {
		cat.HomeGrid = make([]system.AppID, len(cat.Apps))
		for i, app := range cat.Apps {
			cat.HomeGrid[i] = app.ID
		}
		return cat, nil
	}

	cat.HomeGrid = make([]system.AppID, 0, len(f.HomeGrid))
	for _, ref := range f.HomeGrid {
		if !known[system.AppID(ref)] {
			return Catalog{}, fmt.Errorf("%w: home grid references unknown app %q", ErrInvalidCatalog, ref)
		}
		cat.HomeGrid = append(cat.HomeGrid, system.AppID(ref))
	}
	return cat, nil
}

func validateEntry(e entry) error {
	if err := utils.ValidateID(e.ID, "id"); err != nil {
		return err
	}
	if err := utils.ValidateString(e.Name, "name", 1, utils.MaxNameLength, true); err != nil {
		return err
	}
	return utils.ValidateString(e.Icon, "icon", 0, utils.MaxIconLength, false)
}

// Load returns the catalog at path, or the built-in one when path is empty
func Load(path string) (Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}
