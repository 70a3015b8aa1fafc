package catalogue

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
)

func newTestMux() *http.ServeMux {
	handler := NewHandler(NewService(memory.NewCatalogueMemoryStorage()))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/foods", handler.HandleListFoods)
	mux.HandleFunc("POST /v1/foods", handler.HandleCreateFood)
	mux.HandleFunc("GET /v1/foods/{id}", handler.HandleGetFood)
	mux.HandleFunc("PATCH /v1/foods/{id}", handler.HandleUpdateFood)
	mux.HandleFunc("DELETE /v1/foods/{id}", handler.HandleDeleteFood)
	mux.HandleFunc("GET /v1/activities", handler.HandleListActivities)
	mux.HandleFunc("POST /v1/activities", handler.HandleCreateActivity)
	mux.HandleFunc("GET /v1/activities/{id}", handler.HandleGetActivity)
	mux.HandleFunc("PATCH /v1/activities/{id}", handler.HandleUpdateActivity)
	mux.HandleFunc("DELETE /v1/activities/{id}", handler.HandleDeleteActivity)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestFoodCRUD(t *testing.T) {
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/v1/foods", UpsertFoodRequest{
		Name:          "Oats",
		Calories:      389,
		Protein:       16.9,
		Carbs:         66.3,
		Fats:          6.9,
		ServingSizeGm: 100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var food FoodDTO
	if err := json.NewDecoder(rec.Body).Decode(&food); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/foods/"+food.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPatch, "/v1/foods/"+food.ID.String(), UpsertFoodRequest{
		Name:          "Rolled Oats",
		Calories:      380,
		Protein:       16,
		Carbs:         65,
		Fats:          7,
		ServingSizeGm: 100,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated FoodDTO
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Name != "Rolled Oats" || updated.Calories != 380 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/v1/foods/"+food.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/foods/"+food.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestFoodNameConflict(t *testing.T) {
	mux := newTestMux()

	req := UpsertFoodRequest{Name: "Banana", Calories: 89, ServingSizeGm: 100}
	if rec := doJSON(t, mux, http.MethodPost, "/v1/foods", req); rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rec.Code)
	}

	// Names are matched case-insensitively.
	req.Name = "banana"
	rec := doJSON(t, mux, http.MethodPost, "/v1/foods", req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", rec.Code)
	}
}

func TestFoodValidation(t *testing.T) {
	mux := newTestMux()

	cases := []struct {
		name string
		req  UpsertFoodRequest
	}{
		{"missing name", UpsertFoodRequest{ServingSizeGm: 100}},
		{"zero serving size", UpsertFoodRequest{Name: "Rice", ServingSizeGm: 0}},
		{"negative serving size", UpsertFoodRequest{Name: "Rice", ServingSizeGm: -10}},
		{"negative nutrients", UpsertFoodRequest{Name: "Rice", ServingSizeGm: 100, Protein: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/v1/foods", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestListFoodsSearchAndPagination(t *testing.T) {
	mux := newTestMux()

	names := []string{"Apple", "Apricot", "Avocado", "Banana"}
	for _, name := range names {
		rec := doJSON(t, mux, http.MethodPost, "/v1/foods", UpsertFoodRequest{
			Name:          name,
			Calories:      100,
			ServingSizeGm: 100,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", name, rec.Code)
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/v1/foods?q=ap", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list FoodListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Foods) != 2 {
		t.Fatalf("search ap: expected 2 foods, got %d", len(list.Foods))
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/foods?limit=2&offset=2", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Foods) != 2 {
		t.Fatalf("page 2: expected 2 foods, got %d", len(list.Foods))
	}
	if list.Foods[0].Name != "Avocado" {
		t.Fatalf("page 2: expected Avocado first, got %s", list.Foods[0].Name)
	}
}

func TestActivityCRUD(t *testing.T) {
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/v1/activities", UpsertActivityRequest{
		Name:          "Running",
		CaloriesPerKg: 2.5,
		DurationMin:   30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var activity ActivityDTO
	if err := json.NewDecoder(rec.Body).Decode(&activity); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, mux, http.MethodGet, "/v1/activities/"+activity.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/v1/activities", UpsertActivityRequest{
		Name:          "Swimming",
		CaloriesPerKg: 3.1,
		DurationMin:   0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero duration: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/v1/activities/"+activity.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
}
