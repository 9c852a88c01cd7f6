package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nutriportions/models"
	"nutriportions/utils"
)

var testImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))

type memoryImages struct{ uploads int }

func (m *memoryImages) UploadImage(_ context.Context, img *utils.DecodedImage, prefix string) (string, error) {
	m.uploads++
	return fmt.Sprintf("https://cdn.example/%s/photo%s", prefix, img.Ext), nil
}

func TestHTTPAnalyzerCapsAndMatchesCatalog(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"mime_type":"image/png"`) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var items []string
		items = append(items, `{"name":"chicken breast","grams":150,"calories":300,"proteinG":50,"carbsG":0,"fatsG":5}`)
		for i := 0; i < 7; i++ {
			items = append(items, fmt.Sprintf(`{"name":"mystery %d","grams":10,"calories":40,"proteinG":0,"carbsG":10,"fatsG":0}`, i))
		}
		_, _ = io.WriteString(w, `{"items":[`+strings.Join(items, ",")+`]}`)
	}))
	defer srv.Close()

	db := newTestDB(t)
	p := createProfile(t, db, "photo@example.com")
	f := createFood(t, db, chicken())
	foods := NewFoodBankService(db)
	images := &memoryImages{}
	svc := NewPhotoAnalysisService(db, NewHTTPAnalyzer(srv.URL, "k3y", 5*time.Second), foods, images)

	res, err := svc.Analyze(context.Background(), p.ID, testImage)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if gotAuth != "Bearer k3y" {
		t.Fatalf("expected bearer key, got %q", gotAuth)
	}
	if len(res.Items) != MaxAnalyzedItems {
		t.Fatalf("expected %d items, got %d", MaxAnalyzedItems, len(res.Items))
	}
	first := res.Items[0]
	if !first.FoundInCatalog || first.FoodID == nil || *first.FoodID != f.ID {
		t.Fatalf("expected first item to match the catalog, got %+v", first)
	}
	if first.Portions.Protein != 1.5 || first.Portions.Carbs != 0 || first.Portions.Fats != 0 {
		t.Fatalf("unexpected portions %+v", first.Portions)
	}
	if res.Items[1].FoundInCatalog {
		t.Fatalf("mystery item should not match the catalog")
	}
	if images.uploads != 1 || !strings.HasSuffix(res.ImageURL, ".png") {
		t.Fatalf("expected one png upload, got %d %q", images.uploads, res.ImageURL)
	}

	var saved models.PhotoAnalysis
	if err := db.First(&saved, res.ID).Error; err != nil {
		t.Fatalf("load saved analysis: %v", err)
	}
	if saved.ItemCount != MaxAnalyzedItems || saved.Analyzer != "http" {
		t.Fatalf("unexpected saved analysis %+v", saved)
	}
}

func TestHTTPAnalyzerAcceptsBareArray(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"toast","grams":30,"calories":80,"proteinG":3,"carbsG":15,"fatsG":1,"portions":{"protein":0,"carbs":1,"fats":0}}]`)
	}))
	defer srv.Close()

	img, err := utils.DecodeDataURI(testImage)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items, raw, err := NewHTTPAnalyzer(srv.URL, "", time.Second).Analyze(context.Background(), img)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(items) != 1 || items[0].Portions == nil || items[0].Portions.Carbs != 1 || len(raw) == 0 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestAnalyzeReportsUpstreamFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"model overloaded"}`)
	}))
	defer srv.Close()

	db := newTestDB(t)
	p := createProfile(t, db, "fail@example.com")
	svc := NewPhotoAnalysisService(db, NewHTTPAnalyzer(srv.URL, "", time.Second), nil, nil)

	_, err := svc.Analyze(context.Background(), p.ID, testImage)
	if !errors.Is(err, ErrUpstream) || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := svc.Analyze(context.Background(), p.ID, "data:text/plain;base64,aGk="); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for non-image, got %v", err)
	}
	if _, err := NewPhotoAnalysisService(db, nil, nil, nil).Analyze(context.Background(), p.ID, testImage); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable without analyzer, got %v", err)
	}
}
