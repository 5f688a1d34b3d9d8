package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

type tableSeeder interface {
	SeedTable(ctx context.Context, table string, columns []string, rows []map[string]interface{}) (bool, error)
}

// SeedResult reports the outcome for one table.
type SeedResult struct {
	Table  string `json:"table"`
	Rows   int    `json:"rows"`
	Seeded bool   `json:"seeded"`
}

type seedSet struct {
	table   string
	columns []string
	rows    []map[string]interface{}
}

// SeedService writes default site content. Tables that already hold rows are
// left untouched, so running it twice is harmless.
type SeedService struct {
	repo    tableSeeder
	schemas map[string]SettingsSchema
	logger  *zap.Logger
	now     func() time.Time
}

// NewSeedService constructs the service.
func NewSeedService(repo tableSeeder, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{repo: repo, schemas: DefaultSettingsSchemas(), logger: logger, now: time.Now}
}

// Run seeds every table in order and stops at the first failure.
func (s *SeedService) Run(ctx context.Context) ([]SeedResult, error) {
	sets, err := s.defaults()
	if err != nil {
		return nil, err
	}
	results := make([]SeedResult, 0, len(sets))
	for _, set := range sets {
		seeded, err := s.repo.SeedTable(ctx, set.table, set.columns, set.rows)
		if err != nil {
			return results, fmt.Errorf("seed %s: %w", set.table, err)
		}
		result := SeedResult{Table: set.table, Seeded: seeded}
		if seeded {
			result.Rows = len(set.rows)
		}
		s.logger.Info("seed table",
			zap.String("table", set.table),
			zap.Bool("seeded", seeded),
			zap.Int("rows", result.Rows))
		results = append(results, result)
	}
	return results, nil
}

func (s *SeedService) defaults() ([]seedSet, error) {
	now := s.now().UTC()

	menus := []struct{ title, url string }{
		{"Beranda", "/"},
		{"Profil", "/profil"},
		{"Program Keahlian", "/program"},
		{"Berita", "/berita"},
		{"PPDB", "/ppdb"},
		{"Kontak", "/kontak"},
	}
	menuRows := make([]map[string]interface{}, len(menus))
	for i, menu := range menus {
		menuRows[i] = map[string]interface{}{
			"id": uuid.NewString(), "parent_id": nil, "title": menu.title, "url": menu.url,
			"is_active": true, "position": i, "created_at": now, "updated_at": now,
		}
	}

	programs := []struct{ name, slug, description string }{
		{"Teknik Komputer dan Jaringan", "teknik-komputer-dan-jaringan", "Instalasi jaringan, server dan perangkat komputer."},
		{"Rekayasa Perangkat Lunak", "rekayasa-perangkat-lunak", "Pemrograman web, mobile dan basis data."},
		{"Akuntansi dan Keuangan Lembaga", "akuntansi-dan-keuangan-lembaga", "Pembukuan, perpajakan dan aplikasi akuntansi."},
		{"Desain Komunikasi Visual", "desain-komunikasi-visual", "Desain grafis, fotografi dan multimedia."},
	}
	programRows := make([]map[string]interface{}, len(programs))
	for i, program := range programs {
		programRows[i] = map[string]interface{}{
			"id": uuid.NewString(), "name": program.name, "slug": program.slug, "description": program.description,
			"icon": nil, "position": i, "created_at": now, "updated_at": now,
		}
	}

	sections := []struct{ key, title, content string }{
		{"hero", "Selamat Datang", `{"headline":"Selamat Datang di SMK","cta_url":"/ppdb"}`},
		{"programs", "Program Keahlian", `{"limit":6}`},
		{"news", "Berita Terbaru", `{"limit":3}`},
		{"cta", "Pendaftaran Dibuka", `{"button_label":"Daftar Sekarang","button_url":"/ppdb"}`},
	}
	sectionRows := make([]map[string]interface{}, len(sections))
	for i, section := range sections {
		sectionRows[i] = map[string]interface{}{
			"id": uuid.NewString(), "page": "beranda", "section_key": section.key, "title": section.title,
			"content": types.JSONText(section.content), "is_visible": true, "position": i,
			"created_at": now, "updated_at": now,
		}
	}

	settingRows := make([]map[string]interface{}, 0, len(s.schemas))
	for _, key := range sortedSchemaKeys(s.schemas) {
		schema := s.schemas[key]
		value, err := json.Marshal(schema.Merge(nil))
		if err != nil {
			return nil, fmt.Errorf("encode %s defaults: %w", key, err)
		}
		settingRows = append(settingRows, map[string]interface{}{
			"key": key, "version": schema.Version, "value": types.JSONText(value), "updated_by": nil, "updated_at": now,
		})
	}

	return []seedSet{
		{table: "menus", columns: []string{"id", "parent_id", "title", "url", "is_active", "position", "created_at", "updated_at"}, rows: menuRows},
		{table: "programs", columns: []string{"id", "name", "slug", "description", "icon", "position", "created_at", "updated_at"}, rows: programRows},
		{table: "page_sections", columns: []string{"id", "page", "section_key", "title", "content", "is_visible", "position", "created_at", "updated_at"}, rows: sectionRows},
		{table: "settings", columns: []string{"key", "version", "value", "updated_by", "updated_at"}, rows: settingRows},
	}, nil
}
