//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "tarasamar/internal/adapters/http_server"
	redisad "tarasamar/internal/adapters/redis"
	"tarasamar/internal/adapters/session"
	"tarasamar/internal/app"
	"tarasamar/internal/catalog"
	"tarasamar/internal/domain"
	mysqlrepo "tarasamar/internal/storage/mysql"
)

// ---------- helpers ----------

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=tarasamar"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/tarasamar?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlrepo.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func call(t *testing.T, method, url, token string, in, out any) int {
	t.Helper()
	var body bytes.Buffer
	if in != nil {
		_ = json.NewEncoder(&body).Encode(in)
	}
	req, _ := http.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the test ----------

// Ana Cruz submits a request, the admin confirms it, and the guest sees the
// confirmation through the status lookup and the notification inbox. MySQL
// stores the rows and Redis caches the reads in between.
func TestHTTP_EndToEnd_BookingConfirmation(t *testing.T) {
	db := startMySQL(t)
	mr := miniredis.RunT(t)

	repo := mysqlrepo.New(db)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	v, _ := session.NewVerifier("e2e-secret")
	cat := catalog.MustLoad()
	authz := app.AnyOf(app.NewAdminEmails("TaraSamar@gmail.com"), app.RoleIs("admin"))
	ttl := time.Minute

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Catalog:  cat,
		Bookings: app.NewBookingService(repo, repo, repo, cat, authz, cache, ttl),
		Queries:  app.NewQueryService(repo, cache, ttl),
		Notes:    app.NewNotificationService(repo, cache, ttl),
		Admin:    app.NewAdminService(repo, repo, authz),
		Identity: app.NewIdentityService(session.NewLocalProvider(v, time.Hour, nil), repo, authz),
		Tokens:   v,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var sub struct {
		Booking domain.BookingRequest `json:"booking"`
	}
	code := call(t, http.MethodPost, ts.URL+"/v1/booking-requests", "", map[string]any{
		"full_name":     "Ana Cruz",
		"email":         "ana@example.com",
		"phone":         "+639171234567",
		"guests":        2,
		"selected_date": "2025-06-01",
		"package_name":  "Full-Day Island Hopping Adventure",
	}, &sub)
	if code != http.StatusCreated || sub.Booking.Status != domain.StatusPending {
		t.Fatalf("submit: %d %+v", code, sub.Booking)
	}

	statusURL := ts.URL + "/v1/booking-requests/status?email=ana@example.com"
	var list []domain.BookingRequest
	if code := call(t, http.MethodGet, statusURL, "", nil, &list); code != 200 || len(list) != 1 {
		t.Fatalf("status before confirm: %d %+v", code, list)
	}
	if !mr.Exists("tarasamar:status:ana@example.com") {
		t.Fatal("status lookup was not cached")
	}

	opsTok, _ := v.Issue(domain.User{ID: "u-ops", Email: "ops@example.com", Role: "admin"}, time.Hour)
	if code := call(t, http.MethodPost, ts.URL+"/v1/admin/booking-requests/"+sub.Booking.ID+"/confirm", opsTok, nil, nil); code != 200 {
		t.Fatalf("confirm: %d", code)
	}

	list = nil
	call(t, http.MethodGet, statusURL, "", nil, &list)
	if len(list) != 1 || list[0].Status != domain.StatusConfirmed || *list[0].SelectedDate != "2025-06-01" {
		t.Fatalf("status after confirm: %+v", list)
	}

	anaTok, _ := v.Issue(domain.User{ID: "u-ana", Email: "ana@example.com"}, time.Hour)
	var inbox app.Inbox
	call(t, http.MethodGet, ts.URL+"/v1/notifications", anaTok, nil, &inbox)
	if inbox.Unread != 1 || inbox.Items[0].Type != domain.NotificationBookingConfirmed {
		t.Fatalf("inbox: %+v", inbox)
	}
	if code := call(t, http.MethodPost, ts.URL+"/v1/notifications/"+inbox.Items[0].ID+"/read", anaTok, nil, nil); code != 200 {
		t.Fatalf("mark read: %d", code)
	}
	call(t, http.MethodGet, ts.URL+"/v1/notifications", anaTok, nil, &inbox)
	if inbox.Unread != 0 {
		t.Fatalf("unread after read: %d", inbox.Unread)
	}

	var d app.Dashboard
	if code := call(t, http.MethodGet, ts.URL+"/v1/admin/dashboard", opsTok, nil, &d); code != 200 {
		t.Fatalf("dashboard: %d", code)
	}
	if d.Stats.Bookings != 1 || d.Stats.Confirmations != 1 || len(d.Bookings) != 1 {
		t.Fatalf("dashboard: %+v", d.Stats)
	}
}
