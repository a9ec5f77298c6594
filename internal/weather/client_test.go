package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_ByCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Fatalf("неожиданный путь: %s", r.URL.Path)
		}

		query := r.URL.Query()
		if query.Get("lat") != "55.75" || query.Get("lon") != "37.62" {
			t.Fatalf("координаты не переданы: %s", r.URL.RawQuery)
		}
		if query.Get("units") != "metric" {
			t.Fatalf("ожидались метрические единицы")
		}
		if query.Get("appid") != "test-key" {
			t.Fatalf("api ключ не передан")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"main":{"temp":7.3},"weather":[{"main":"Rain","description":"light rain"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	info, err := client.ByCoordinates(context.Background(), 55.75, 37.62)
	if err != nil {
		t.Fatalf("запрос вернул ошибку: %v", err)
	}

	if info.Temperature != 7.3 {
		t.Fatalf("ожидалась температура 7.3, получили %v", info.Temperature)
	}
	if info.Condition != "rain" {
		t.Fatalf("условие должно приводиться к нижнему регистру, получили %q", info.Condition)
	}
	if info.Description != "light rain" {
		t.Fatalf("описание не передано: %q", info.Description)
	}
}

func TestClient_ByCoordinatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", time.Second)
	if _, err := client.ByCoordinates(context.Background(), 0, 0); err == nil {
		t.Fatalf("ожидалась ошибка при статусе 401")
	}
}

func TestClient_ByCoordinatesEmptyConditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main":{"temp":20},"weather":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	if _, err := client.ByCoordinates(context.Background(), 0, 0); err == nil {
		t.Fatalf("пустой список условий должен быть ошибкой")
	}
}

func TestClient_ByCoordinatesNoAPIKey(t *testing.T) {
	client := NewClient("http://localhost", "", time.Second)
	if _, err := client.ByCoordinates(context.Background(), 0, 0); err == nil {
		t.Fatalf("без api ключа запрос должен отклоняться")
	}
}
