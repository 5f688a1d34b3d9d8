package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type settingsStoreStub struct {
	rows    map[string]models.Setting
	upserts int
}

func newSettingsStoreStub() *settingsStoreStub {
	return &settingsStoreStub{rows: make(map[string]models.Setting)}
}

func (s *settingsStoreStub) Get(_ context.Context, key string) (*models.Setting, error) {
	row, ok := s.rows[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (s *settingsStoreStub) List(_ context.Context) ([]models.Setting, error) {
	out := make([]models.Setting, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	return out, nil
}

func (s *settingsStoreStub) Upsert(_ context.Context, setting *models.Setting) error {
	setting.UpdatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.rows[setting.Key] = *setting
	s.upserts++
	return nil
}

func decodeValue(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var value map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &value))
	return value
}

func TestMergeWithDefaultsKeepsKindsAndDropsUnknownKeys(t *testing.T) {
	defaults := map[string]interface{}{
		"title":   "Default",
		"count":   float64(3),
		"enabled": true,
		"logo":    nil,
		"nested":  map[string]interface{}{"a": "x", "b": "y"},
	}
	stored := map[string]interface{}{
		"title":   "Custom",
		"count":   "seven",
		"enabled": false,
		"logo":    "https://cdn.example.com/logo.png",
		"nested":  map[string]interface{}{"a": "z", "legacy": true},
		"removed": "field",
	}

	merged := MergeWithDefaults(defaults, stored).(map[string]interface{})
	assert.Equal(t, "Custom", merged["title"])
	assert.Equal(t, float64(3), merged["count"])
	assert.Equal(t, false, merged["enabled"])
	assert.Equal(t, "https://cdn.example.com/logo.png", merged["logo"])
	assert.Equal(t, map[string]interface{}{"a": "z", "b": "y"}, merged["nested"])
	assert.NotContains(t, merged, "removed")

	// defaults are never mutated by a merge
	assert.Equal(t, "x", defaults["nested"].(map[string]interface{})["a"])
}

func TestBerandaSectionsMergePerVariant(t *testing.T) {
	schema := berandaSchema()
	merged := schema.Merge(map[string]interface{}{
		"sections": []interface{}{
			map[string]interface{}{"type": "cta", "title": "Ayo Daftar"},
			map[string]interface{}{"type": "marquee", "text": "dropped"},
			"not-an-object",
			map[string]interface{}{"type": "stats", "items": []interface{}{
				map[string]interface{}{"label": "Siswa", "value": "1200", "color": "red"},
			}},
		},
	})

	sections := merged["sections"].([]interface{})
	require.Len(t, sections, 2)
	cta := sections[0].(map[string]interface{})
	assert.Equal(t, "Ayo Daftar", cta["title"])
	assert.Equal(t, "Daftar Sekarang", cta["button_label"])
	assert.Equal(t, true, cta["enabled"])

	stats := sections[1].(map[string]interface{})
	items := stats["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, map[string]interface{}{"label": "Siswa", "value": "1200", "icon": nil}, items[0])

	seo := merged["seo"].(map[string]interface{})
	assert.Equal(t, "SMK Negeri", seo["title"])
}

func TestSettingsServiceGetServesDefaultsWhenMissing(t *testing.T) {
	svc := NewSettingsService(newSettingsStoreStub(), nil, nil, nil, nil)

	doc, err := svc.Get(context.Background(), "Theme")
	require.NoError(t, err)
	assert.False(t, doc.Stored)
	assert.Nil(t, doc.UpdatedAt)
	assert.Equal(t, 1, doc.Version)
	value := decodeValue(t, doc.Value)
	assert.Equal(t, "#1d4ed8", value["colors"].(map[string]interface{})["primary"])

	_, err = svc.Get(context.Background(), "unknown")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSettingsServiceUpgradesOlderStoredDocuments(t *testing.T) {
	store := newSettingsStoreStub()
	store.rows[SettingBeranda] = models.Setting{
		Key:     SettingBeranda,
		Version: 1,
		Value:   types.JSONText(`{"seo":{"title":"SMKN 1 Contoh"},"hero_title":"legacy"}`),
	}
	svc := NewSettingsService(store, nil, nil, nil, nil)

	doc, err := svc.Get(context.Background(), SettingBeranda)
	require.NoError(t, err)
	assert.True(t, doc.Stored)
	assert.Equal(t, 2, doc.Version)
	value := decodeValue(t, doc.Value)
	assert.NotContains(t, value, "hero_title")
	seo := value["seo"].(map[string]interface{})
	assert.Equal(t, "SMKN 1 Contoh", seo["title"])
	assert.Equal(t, "Sekolah Menengah Kejuruan", seo["description"])
	assert.Len(t, value["sections"], 4)
}

func TestSettingsServiceListCoversEveryKey(t *testing.T) {
	store := newSettingsStoreStub()
	store.rows[SettingBranding] = models.Setting{Key: SettingBranding, Version: 1, Value: types.JSONText(`{"school_name":"SMKN 2"}`)}
	svc := NewSettingsService(store, nil, nil, nil, nil)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	keys := make([]string, len(docs))
	for i, doc := range docs {
		keys[i] = doc.Key
	}
	assert.Equal(t, []string{SettingBeranda, SettingBranding, SettingHeroSlider, SettingTheme}, keys)
	assert.True(t, docs[1].Stored)
	assert.Equal(t, "SMKN 2", decodeValue(t, docs[1].Value)["school_name"])
}

func TestSettingsServiceReplaceStoresMergedDocumentAndAuditsDiff(t *testing.T) {
	store := newSettingsStoreStub()
	audit := &auditStub{}
	cache := &invalidatorStub{}
	svc := NewSettingsService(store, audit, cache, nil, nil)

	doc, err := svc.Replace(context.Background(), SettingBranding,
		json.RawMessage(`{"school_name":"SMKN 3 Contoh","unknown":1,"contact":{"phone":"0211234"}}`),
		Actor{UserID: "admin-1"})
	require.NoError(t, err)
	assert.True(t, doc.Stored)
	require.NotNil(t, doc.UpdatedBy)
	assert.Equal(t, "admin-1", *doc.UpdatedBy)

	stored := decodeValue(t, json.RawMessage(store.rows[SettingBranding].Value))
	assert.Equal(t, "SMKN 3 Contoh", stored["school_name"])
	assert.NotContains(t, stored, "unknown")
	assert.Equal(t, "0211234", stored["contact"].(map[string]interface{})["phone"])

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSettingsUpdate, audit.logs[0].Action)
	var ops []map[string]interface{}
	require.NoError(t, json.Unmarshal(audit.logs[0].NewValues.JSONText, &ops))
	paths := make([]string, len(ops))
	for i, op := range ops {
		paths[i] = op["path"].(string)
	}
	assert.ElementsMatch(t, []string{"/school_name", "/contact/phone"}, paths)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
}

func TestSettingsServiceReplaceRejectsInvalidDocuments(t *testing.T) {
	store := newSettingsStoreStub()
	svc := NewSettingsService(store, nil, nil, nil, nil)

	_, err := svc.Replace(context.Background(), SettingTheme, json.RawMessage(`["not","object"]`), Actor{})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Replace(context.Background(), SettingTheme, json.RawMessage(`{"colors":{"primary":"blue"}}`), Actor{})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "colors.primary")
	assert.Zero(t, store.upserts)
}

func TestSettingsServiceMergePatch(t *testing.T) {
	store := newSettingsStoreStub()
	svc := NewSettingsService(store, nil, nil, nil, nil)

	_, err := svc.Replace(context.Background(), SettingHeroSlider, json.RawMessage(`{"interval_ms":7000}`), Actor{})
	require.NoError(t, err)

	doc, err := svc.Patch(context.Background(), SettingHeroSlider, json.RawMessage(`{"autoplay":false}`), PatchFormatMerge, Actor{})
	require.NoError(t, err)
	value := decodeValue(t, doc.Value)
	assert.Equal(t, false, value["autoplay"])
	assert.Equal(t, float64(7000), value["interval_ms"])

	// null removes the field, which falls back to its default
	doc, err = svc.Patch(context.Background(), SettingHeroSlider, json.RawMessage(`{"interval_ms":null}`), PatchFormatMerge, Actor{})
	require.NoError(t, err)
	assert.Equal(t, float64(5000), decodeValue(t, doc.Value)["interval_ms"])

	_, err = svc.Patch(context.Background(), SettingHeroSlider, json.RawMessage(`{"interval_ms":10}`), PatchFormatMerge, Actor{})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSettingsServiceJSONPatch(t *testing.T) {
	store := newSettingsStoreStub()
	svc := NewSettingsService(store, nil, nil, nil, nil)

	doc, err := svc.Patch(context.Background(), SettingHeroSlider,
		json.RawMessage(`[{"op":"add","path":"/slides/-","value":{"title":"PPDB Dibuka"}}]`),
		PatchFormatJSONPatch, Actor{})
	require.NoError(t, err)
	slides := decodeValue(t, doc.Value)["slides"].([]interface{})
	require.Len(t, slides, 2)
	assert.Equal(t, "PPDB Dibuka", slides[1].(map[string]interface{})["title"])
	assert.Nil(t, slides[1].(map[string]interface{})["image_url"])

	_, err = svc.Patch(context.Background(), SettingHeroSlider,
		json.RawMessage(`[{"op":"remove","path":"/missing"}]`), PatchFormatJSONPatch, Actor{})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Patch(context.Background(), SettingHeroSlider, json.RawMessage(`{}`), PatchFormat("xml"), Actor{})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}
