package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		check   func(t *testing.T, resp *ArchiveResponse)
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"latitude": -6.369028,
				"longitude": 34.888822,
				"timezone": "Africa/Dar_es_Salaam",
				"daily": {
					"time": ["2019-01-01", "2019-01-02"],
					"temperature_2m_mean": [24.1, 25.3],
					"precipitation_sum": [2.4, 0.0],
					"et0_fao_evapotranspiration": [4.1, 4.4]
				}
			}`,
			check: func(t *testing.T, resp *ArchiveResponse) {
				require.NotNil(t, resp.Daily)
				assert.Len(t, resp.Daily.Time, 2)
				assert.Equal(t, 24.1, resp.Daily.Temperature2mMean[0])
				assert.Equal(t, 4.4, resp.Daily.ET0FAOEvapotranspiration[1])
			},
		},
		{
			name:   "no daily section",
			status: http.StatusOK,
			body:   `{"latitude": -6.37, "longitude": 34.89}`,
			check: func(t *testing.T, resp *ArchiveResponse) {
				assert.Nil(t, resp.Daily)
			},
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"reason": "boom"}`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "malformed response",
			status:  http.StatusOK,
			body:    `{invalid`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/archive", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "2019-01-01", q.Get("start_date"))
				assert.Equal(t, "2023-12-31", q.Get("end_date"))
				assert.Equal(t, "Africa/Dar_es_Salaam", q.Get("timezone"))
				assert.Contains(t, q.Get("daily"), "temperature_2m_mean")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(WithBaseURL(srv.URL))
			resp, err := client.Archive(context.Background(), ArchiveRequest{
				Latitude:  -6.369028,
				Longitude: 34.888822,
				StartDate: "2019-01-01",
				EndDate:   "2023-12-31",
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, resp)
		})
	}
}

func TestArchiveContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Archive(ctx, ArchiveRequest{StartDate: "2019-01-01", EndDate: "2019-12-31"})
	require.Error(t, err)
}
