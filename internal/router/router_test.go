package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-clinic-scheduling/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actor struct {
	id   string
	role string
}

var (
	ownerA = actor{id: "owner-a", role: "owner"}
	ownerB = actor{id: "owner-b", role: "owner"}
	staff  = actor{id: "staff-1", role: "staff"}
	admin  = actor{id: "admin-1", role: "admin"}
	nobody = actor{}
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	t.Cleanup(ts.Close)
	return ts
}

// slotAt devuelve el día days a partir de hoy (UTC) a la hora dada.
func slotAt(days, hour, minute int) time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d+days, hour, minute, 0, 0, time.UTC)
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", nobody, nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))
}

func TestHTTP_RequiresIdentity(t *testing.T) {
	ts := newServer(t)

	for _, path := range []string{"/pets", "/appointments", "/reminders", "/dashboard/stats", "/blocks"} {
		st, _ := doReq(t, ts.URL, "GET", path, nobody, nil)
		assert.Equal(t, http.StatusUnauthorized, st, path)
	}
}

func TestHTTP_Pets_DuplicateAndOwnership(t *testing.T) {
	ts := newServer(t)

	petID := createPet(t, ts.URL, ownerA, map[string]any{
		"name":          "Milo",
		"species":       "dog",
		"breed":         "mixed",
		"date_of_birth": "2021-04-02",
		"microchip_id":  "chip-1",
	})

	st, body := doReq(t, ts.URL, "POST", "/pets", ownerA, map[string]any{
		"name":         "Otro",
		"species":      "dog",
		"microchip_id": "chip-1",
	})
	require.Equal(t, http.StatusConflict, st, string(body))
	var conflict struct {
		Kind     string `json:"kind"`
		Conflict struct {
			ID string `json:"id"`
		} `json:"conflict"`
	}
	require.NoError(t, json.Unmarshal(body, &conflict))
	assert.Equal(t, "duplicate_pet", conflict.Kind)
	assert.Equal(t, petID, conflict.Conflict.ID)

	st, _ = doReq(t, ts.URL, "GET", "/pets/"+petID, ownerB, nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, _ = doReq(t, ts.URL, "POST", "/pets", ownerB, map[string]any{"owner_id": "owner-a", "name": "X", "species": "cat"})
	assert.Equal(t, http.StatusForbidden, st)

	st, _ = doReq(t, ts.URL, "POST", "/pets", ownerA, map[string]any{"name": "X", "species": "cat", "color": "black"})
	assert.Equal(t, http.StatusBadRequest, st, "unknown fields are rejected")

	st, body = doReq(t, ts.URL, "PATCH", "/pets/"+petID, ownerA, map[string]any{"date_of_birth": nil, "weight": 9.5})
	require.Equal(t, http.StatusOK, st, string(body))
	var patched map[string]any
	require.NoError(t, json.Unmarshal(body, &patched))
	assert.NotContains(t, patched, "date_of_birth")
	assert.Equal(t, 9.5, patched["weight"])

	st, _ = doReq(t, ts.URL, "GET", "/pets?scope=all", ownerA, nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, body = doReq(t, ts.URL, "GET", "/pets?scope=all", staff, nil)
	require.Equal(t, http.StatusOK, st)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 1)
}

func TestHTTP_Appointments_BookingRules(t *testing.T) {
	ts := newServer(t)

	petA := createPet(t, ts.URL, ownerA, map[string]any{"name": "Milo", "species": "dog"})
	petB := createPet(t, ts.URL, ownerB, map[string]any{"name": "Luna", "species": "cat"})

	at := slotAt(3, 10, 0)
	first := createAppointment(t, ts.URL, ownerA, petA, at)

	// a 15 minutos del anterior: 409 con el turno que ocupa el horario
	st, body := doReq(t, ts.URL, "POST", "/appointments", ownerB, map[string]any{
		"pet_id":    petB,
		"date_time": at.Add(15 * time.Minute).Format(time.RFC3339),
		"reason":    "vaccine",
	})
	require.Equal(t, http.StatusConflict, st, string(body))
	var conflict struct {
		Kind     string `json:"kind"`
		Conflict struct {
			ID string `json:"id"`
		} `json:"conflict"`
	}
	require.NoError(t, json.Unmarshal(body, &conflict))
	assert.Equal(t, "booked", conflict.Kind)
	assert.Equal(t, first, conflict.Conflict.ID)

	// owner no puede agendar para la mascota de otro
	st, _ = doReq(t, ts.URL, "POST", "/appointments", ownerB, map[string]any{
		"pet_id":    petA,
		"date_time": at.Add(2 * time.Hour).Format(time.RFC3339),
		"reason":    "x",
	})
	assert.Equal(t, http.StatusForbidden, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments", ownerA, map[string]any{
		"pet_id":    "missing",
		"date_time": at.Add(2 * time.Hour).Format(time.RFC3339),
		"reason":    "x",
	})
	assert.Equal(t, http.StatusNotFound, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments", ownerA, map[string]any{
		"pet_id":    petA,
		"date_time": "mañana",
		"reason":    "x",
	})
	assert.Equal(t, http.StatusBadRequest, st)

	// staff agenda para el dueño de la mascota
	st, body = doReq(t, ts.URL, "POST", "/appointments", staff, map[string]any{
		"pet_id":    petB,
		"date_time": at.Add(30 * time.Minute).Format(time.RFC3339),
		"reason":    "vaccine",
	})
	require.Equal(t, http.StatusCreated, st, string(body))
	var booked struct {
		ID        string `json:"id"`
		UserID    string `json:"user_id"`
		CreatedBy string `json:"created_by"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &booked))
	assert.Equal(t, "owner-b", booked.UserID)
	assert.Equal(t, "staff-1", booked.CreatedBy)
	assert.Equal(t, "pending", booked.Status)

	st, body = doReq(t, ts.URL, "GET", "/appointments", ownerB, nil)
	require.Equal(t, http.StatusOK, st)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(body, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, booked.ID, mine[0]["id"])

	st, _ = doReq(t, ts.URL, "GET", "/appointments/"+booked.ID, ownerA, nil)
	assert.Equal(t, http.StatusForbidden, st)

	// cancelar libera el horario
	st, _ = doReq(t, ts.URL, "PATCH", "/appointments/"+first, staff, map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, st)
	st, body = doReq(t, ts.URL, "GET", "/schedule/availability?at="+at.Format(time.RFC3339), ownerA, nil)
	require.Equal(t, http.StatusOK, st)
	var avail struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(body, &avail))
	assert.True(t, avail.Available)

	st, _ = doReq(t, ts.URL, "PATCH", "/appointments/"+first, staff, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, st)
}

func TestHTTP_Blocks(t *testing.T) {
	ts := newServer(t)
	petA := createPet(t, ts.URL, ownerA, map[string]any{"name": "Milo", "species": "dog"})

	day := slotAt(5, 0, 0).Format("2006-01-02")

	st, _ := doReq(t, ts.URL, "POST", "/blocks", ownerA, map[string]any{"date": day})
	assert.Equal(t, http.StatusForbidden, st)

	st, body := doReq(t, ts.URL, "POST", "/blocks", staff, map[string]any{"date": day, "notes": "feriado"})
	require.Equal(t, http.StatusCreated, st, string(body))

	st, body = doReq(t, ts.URL, "POST", "/blocks", staff, map[string]any{"date": day})
	require.Equal(t, http.StatusConflict, st)
	assert.Contains(t, string(body), "block_exists")

	st, body = doReq(t, ts.URL, "POST", "/appointments", ownerA, map[string]any{
		"pet_id":    petA,
		"date_time": slotAt(5, 11, 0).Format(time.RFC3339),
		"reason":    "checkup",
	})
	require.Equal(t, http.StatusConflict, st)
	var conflict struct {
		Kind     string `json:"kind"`
		Conflict struct {
			Notes string `json:"notes"`
		} `json:"conflict"`
	}
	require.NoError(t, json.Unmarshal(body, &conflict))
	assert.Equal(t, "blocked", conflict.Kind)
	assert.Equal(t, "feriado", conflict.Conflict.Notes)

	st, body = doReq(t, ts.URL, "GET", "/schedule/slots?date="+day, ownerA, nil)
	require.Equal(t, http.StatusOK, st)
	var slots []struct {
		Available bool   `json:"available"`
		Reason    string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(body, &slots))
	require.Len(t, slots, 16)
	for _, s := range slots {
		assert.False(t, s.Available)
		assert.Equal(t, "blocked", s.Reason)
	}

	st, _ = doReq(t, ts.URL, "DELETE", "/blocks/"+day, staff, nil)
	require.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, "DELETE", "/blocks/"+day, staff, nil)
	assert.Equal(t, http.StatusNotFound, st)

	createAppointment(t, ts.URL, ownerA, petA, slotAt(5, 11, 0))
}

func TestHTTP_Reminders(t *testing.T) {
	ts := newServer(t)

	vaccination := slotAt(3, 0, 0).Format("2006-01-02")
	petA := createPet(t, ts.URL, ownerA, map[string]any{
		"name":                  "Milo",
		"species":               "dog",
		"next_vaccination_date": vaccination,
	})
	apptID := createAppointment(t, ts.URL, staff, petA, slotAt(2, 10, 0))

	reminders := listReminders(t, ts.URL, ownerA)
	require.Len(t, reminders, 2)
	ids := []string{reminders[0].ID, reminders[1].ID}
	assert.Contains(t, ids, apptID)
	assert.Contains(t, ids, "vaccination:"+petA+":"+vaccination)

	// el staff que agendó no recibe el recordatorio
	assert.Empty(t, listReminders(t, ts.URL, staff))

	st, body := doReq(t, ts.URL, "POST", "/reminders/"+apptID+"/dismiss", ownerA, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	assert.JSONEq(t, `{"dismissed":"`+apptID+`"}`, string(body))

	reminders = listReminders(t, ts.URL, ownerA)
	require.Len(t, reminders, 1)
	assert.Equal(t, "vaccination", reminders[0].Type)
}

func TestHTTP_HealthRecords(t *testing.T) {
	ts := newServer(t)
	petA := createPet(t, ts.URL, ownerA, map[string]any{"name": "Milo", "species": "dog"})

	st, body := doReq(t, ts.URL, "POST", "/pets/"+petA+"/health-records", staff, map[string]any{
		"record_type": "vaccination",
		"title":       "Rabies",
		"date":        "2025-01-15",
	})
	require.Equal(t, http.StatusCreated, st, string(body))

	st, _ = doReq(t, ts.URL, "GET", "/pets/"+petA+"/health-records", ownerB, nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, body = doReq(t, ts.URL, "GET", "/pets/"+petA+"/health-records", ownerA, nil)
	require.Equal(t, http.StatusOK, st)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Rabies", items[0]["title"])
}

func TestHTTP_Dashboard(t *testing.T) {
	ts := newServer(t)

	_, _ = doReq(t, ts.URL, "POST", "/users/me", ownerA, nil)
	_, _ = doReq(t, ts.URL, "POST", "/users/me", staff, nil)
	petA := createPet(t, ts.URL, ownerA, map[string]any{"name": "Milo", "species": "dog"})
	createAppointment(t, ts.URL, ownerA, petA, slotAt(1, 10, 0))

	st, _ := doReq(t, ts.URL, "GET", "/dashboard/stats", ownerA, nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, body := doReq(t, ts.URL, "GET", "/dashboard/stats", staff, nil)
	require.Equal(t, http.StatusOK, st)
	var stats struct {
		PendingCount int `json:"pending_count"`
		TotalPets    int `json:"total_pets"`
		TotalClients int `json:"total_clients"`
	}
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.TotalPets)
	assert.Equal(t, 1, stats.TotalClients)
}

func TestHTTP_IndexAudit(t *testing.T) {
	ts := newServer(t)

	petA := createPet(t, ts.URL, ownerA, map[string]any{"name": "Milo", "species": "dog"})
	createAppointment(t, ts.URL, ownerA, petA, slotAt(1, 10, 0))
	st, _ := doReq(t, ts.URL, "DELETE", "/pets/"+petA, ownerA, nil)
	require.Equal(t, http.StatusOK, st)

	st, _ = doReq(t, ts.URL, "GET", "/admin/index-audit", staff, nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, body := doReq(t, ts.URL, "GET", "/admin/index-audit", admin, nil)
	require.Equal(t, http.StatusOK, st)
	var report struct {
		Records int               `json:"records"`
		Issues  []json.RawMessage `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 1, report.Records)
	assert.Empty(t, report.Issues)
}

// -------------------------
// Helpers
// -------------------------

func createPet(t *testing.T, baseURL string, as actor, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", as, payload)
	require.Equal(t, http.StatusCreated, st, "create pet: %s", string(body))

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func createAppointment(t *testing.T, baseURL string, as actor, petID string, at time.Time) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/appointments", as, map[string]any{
		"pet_id":    petID,
		"date_time": at.Format(time.RFC3339),
		"reason":    "checkup",
	})
	require.Equal(t, http.StatusCreated, st, "create appointment: %s", string(body))

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.ID
}

type reminderDTO struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func listReminders(t *testing.T, baseURL string, as actor) []reminderDTO {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/reminders", as, nil)
	require.Equal(t, http.StatusOK, st, string(body))

	var out []reminderDTO
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func doReq(t *testing.T, baseURL, method, path string, as actor, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.id != "" {
		req.Header.Set("X-Debug-User-ID", as.id)
		req.Header.Set("X-Debug-User-Role", as.role)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, respBody
}
