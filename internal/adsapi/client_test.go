package adsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchProfile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"modified": "2026-07-01T00:00:00Z",
			"works": []map[string]any{
				{
					"identifiers": []map[string]string{{"type": "doi", "value": "10.1/x"}},
					"updated":     "2026-06-01T00:00:00Z",
					"provenance":  "orcid",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ignored").WithBaseURL(srv.URL)
	profile, err := c.FetchProfile(context.Background(), "0000-0001-2345-6789", "test-token", "")
	require.NoError(t, err)
	require.Len(t, profile.Works, 1)
	require.Equal(t, "doi", profile.Works[0].Identifiers[0].Type)
}

func TestFetchUpdatesSince_EmptyMeansNothingNew(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	entries, err := c.FetchUpdatesSince(context.Background(), time.Now())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDo_RetriesOn429ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"bibcode":"2024ApJ...900....1A","authors":["A, One"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	c.HTTPClient.Timeout = 5 * time.Second
	meta, err := c.LookupByBibcode(context.Background(), "2024ApJ...900....1A")
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, "2024ApJ...900....1A", meta.Bibcode)
}

func TestDo_NonRetryableStatusFailsImmediately(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.LookupByBibcode(context.Background(), "2024ApJ...900....1A")
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestLookupByIdentifier_UnknownReturnsNilNoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	meta, err := c.LookupByIdentifier(context.Background(), "doi", "10.1/unknown")
	require.NoError(t, err)
	require.Nil(t, meta)
}
