package service

import (
	"fmt"
	"regexp"
	"sort"
)

// Settings document keys.
const (
	SettingBeranda    = "beranda"
	SettingTheme      = "theme"
	SettingBranding   = "branding"
	SettingHeroSlider = "hero_slider"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// SettingsSchema describes one versioned settings document. Defaults fixes the
// document shape: keys absent from Defaults are dropped on merge, and a nil
// default accepts a stored value of any kind.
type SettingsSchema struct {
	Key      string
	Version  int
	Defaults map[string]interface{}
	// Items describes array elements, keyed by path ("slides",
	// "sections[].items"). Arrays without an entry keep stored elements as-is.
	Items    map[string]ItemSchema
	Validate func(doc map[string]interface{}) error
}

// ItemSchema merges each array element against a template or, when Tag is
// set, against the variant named by the element's Tag field. Elements with an
// unknown variant are dropped.
type ItemSchema struct {
	Template map[string]interface{}
	Tag      string
	Variants map[string]map[string]interface{}
}

// Merge resolves stored against the schema defaults.
func (s SettingsSchema) Merge(stored map[string]interface{}) map[string]interface{} {
	merged, _ := s.merge("", s.Defaults, stored).(map[string]interface{})
	return merged
}

// MergeWithDefaults recursively overlays stored onto defaults. A stored value
// replaces a default only when both have the same JSON kind.
func MergeWithDefaults(defaults, stored interface{}) interface{} {
	return SettingsSchema{}.merge("", defaults, stored)
}

func (s SettingsSchema) merge(path string, def, stored interface{}) interface{} {
	switch d := def.(type) {
	case map[string]interface{}:
		src, _ := stored.(map[string]interface{})
		out := make(map[string]interface{}, len(d))
		for key, dv := range d {
			out[key] = s.merge(joinPath(path, key), dv, src[key])
		}
		return out
	case []interface{}:
		src, ok := stored.([]interface{})
		if !ok {
			src = d
		}
		item, described := s.Items[path]
		out := make([]interface{}, 0, len(src))
		for _, element := range src {
			if !described {
				out = append(out, cloneJSON(element))
				continue
			}
			if merged, keep := s.mergeItem(path, item, element); keep {
				out = append(out, merged)
			}
		}
		return out
	case nil:
		return cloneJSON(stored)
	default:
		if sameKind(d, stored) {
			return stored
		}
		return d
	}
}

func (s SettingsSchema) mergeItem(path string, item ItemSchema, element interface{}) (interface{}, bool) {
	fields, ok := element.(map[string]interface{})
	if !ok {
		return nil, false
	}
	template := item.Template
	if item.Tag != "" {
		tag, _ := fields[item.Tag].(string)
		variant, known := item.Variants[tag]
		if !known {
			return nil, false
		}
		template = variant
	}
	return s.merge(path+"[]", template, fields), true
}

func sameKind(a, b interface{}) bool {
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case float64:
		_, ok := b.(float64)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	}
	return false
}

func cloneJSON(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[key] = cloneJSON(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = cloneJSON(inner)
		}
		return out
	default:
		return v
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// DefaultSettingsSchemas returns the built-in settings documents.
func DefaultSettingsSchemas() map[string]SettingsSchema {
	schemas := []SettingsSchema{berandaSchema(), themeSchema(), brandingSchema(), heroSliderSchema()}
	out := make(map[string]SettingsSchema, len(schemas))
	for _, schema := range schemas {
		out[schema.Key] = schema
	}
	return out
}

func sortedSchemaKeys(schemas map[string]SettingsSchema) []string {
	keys := make([]string, 0, len(schemas))
	for key := range schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func berandaSchema() SettingsSchema {
	return SettingsSchema{
		Key:     SettingBeranda,
		Version: 2,
		Defaults: map[string]interface{}{
			"seo": map[string]interface{}{
				"title":       "SMK Negeri",
				"description": "Sekolah Menengah Kejuruan",
			},
			"sections": []interface{}{
				map[string]interface{}{"type": "hero"},
				map[string]interface{}{"type": "stats"},
				map[string]interface{}{"type": "programs"},
				map[string]interface{}{"type": "cta"},
			},
		},
		Items: map[string]ItemSchema{
			"sections": {
				Tag: "type",
				Variants: map[string]map[string]interface{}{
					"hero": {
						"type":             "hero",
						"enabled":          true,
						"headline":         "Selamat Datang",
						"subheadline":      "",
						"cta_label":        "Daftar PPDB",
						"cta_url":          "/ppdb",
						"background_image": nil,
					},
					"stats": {
						"type":    "stats",
						"enabled": true,
						"title":   "SMK dalam Angka",
						"items":   []interface{}{},
					},
					"programs": {
						"type":    "programs",
						"enabled": true,
						"title":   "Program Keahlian",
						"limit":   float64(6),
					},
					"cta": {
						"type":         "cta",
						"enabled":      true,
						"title":        "Bergabung Bersama Kami",
						"description":  "",
						"button_label": "Daftar Sekarang",
						"button_url":   "/ppdb",
					},
					"gallery": {
						"type":    "gallery",
						"enabled": true,
						"title":   "Galeri",
						"limit":   float64(8),
					},
				},
			},
			"sections[].items": {
				Template: map[string]interface{}{"label": "", "value": "0", "icon": nil},
			},
		},
	}
}

func themeSchema() SettingsSchema {
	return SettingsSchema{
		Key:     SettingTheme,
		Version: 1,
		Defaults: map[string]interface{}{
			"colors": map[string]interface{}{
				"primary":    "#1d4ed8",
				"secondary":  "#f59e0b",
				"background": "#ffffff",
				"text":       "#111827",
			},
			"fonts": map[string]interface{}{
				"heading": "Poppins",
				"body":    "Inter",
			},
			"radius":    "md",
			"dark_mode": false,
		},
		Validate: func(doc map[string]interface{}) error {
			colors, _ := doc["colors"].(map[string]interface{})
			for name, value := range colors {
				if color, _ := value.(string); !hexColorPattern.MatchString(color) {
					return fmt.Errorf("colors.%s must be a hex color", name)
				}
			}
			return nil
		},
	}
}

func brandingSchema() SettingsSchema {
	return SettingsSchema{
		Key:     SettingBranding,
		Version: 1,
		Defaults: map[string]interface{}{
			"school_name": "SMK Negeri",
			"tagline":     "",
			"logo_url":    nil,
			"favicon_url": nil,
			"contact": map[string]interface{}{
				"address":  "",
				"phone":    "",
				"email":    "",
				"whatsapp": "",
			},
			"social": map[string]interface{}{
				"instagram": "",
				"facebook":  "",
				"youtube":   "",
				"tiktok":    "",
			},
		},
	}
}

func heroSliderSchema() SettingsSchema {
	slide := map[string]interface{}{"title": "", "subtitle": "", "image_url": nil, "link_url": nil}
	return SettingsSchema{
		Key:     SettingHeroSlider,
		Version: 1,
		Defaults: map[string]interface{}{
			"autoplay":    true,
			"interval_ms": float64(5000),
			"slides": []interface{}{
				map[string]interface{}{"title": "Selamat Datang di SMK", "subtitle": "", "image_url": nil, "link_url": nil},
			},
		},
		Items: map[string]ItemSchema{
			"slides": {Template: slide},
		},
		Validate: func(doc map[string]interface{}) error {
			if interval, _ := doc["interval_ms"].(float64); interval < 1000 {
				return fmt.Errorf("interval_ms must be at least 1000")
			}
			return nil
		},
	}
}
