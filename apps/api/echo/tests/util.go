package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/dashboard"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
	emailsvc "github.com/trezcool/shule/services/email"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
	testutil "github.com/trezcool/shule/tests"
)

type app struct {
	*Server
	db       *sqlx.DB
	logger   *testutil.Logger
	mailSvc  *emailsvc.ConsoleServiceMock
	studRepo student.Repository
	feeRepo  fee.Repository
	inqRepo  inquiry.Repository
}

func setup(t *testing.T) *app {
	conf := &core.Config{
		AppName:  "Shule",
		TestMode: true,
		WorkDir:  core.Getwd(),
		Server: core.ServerConfig{
			AllowedOrigins: []string{"*"},
			DisableReqLogs: true,
		},
		Inquiry: core.InquiryConfig{NotifyOnRespond: true},
	}
	logger := new(testutil.Logger)
	core.ParseEmailTemplates(conf, logger)

	// set up DB & repos
	db := testutil.PrepareDB(t)
	repoDB := sqlxrepos.NewDB(db)
	a := &app{
		db:       db,
		logger:   logger,
		mailSvc:  emailsvc.NewConsoleServiceMock(conf, logger),
		studRepo: sqlxrepos.NewStudentRepository(repoDB),
		feeRepo:  sqlxrepos.NewFeeRepository(repoDB),
		inqRepo:  sqlxrepos.NewInquiryRepository(repoDB),
	}

	// set up services
	studentSvc := student.NewService(a.studRepo)
	feeSvc := fee.NewService(a.feeRepo, studentSvc)
	inquirySvc := inquiry.NewService(a.inqRepo, a.mailSvc, conf.Inquiry.NotifyOnRespond)
	dashboardSvc := dashboard.NewService(studentSvc, feeSvc, inquirySvc, nil, logger, dashboard.Options{})
	validate, translator := testutil.NewValidator()

	// set up server
	a.Server = NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		DB:           db,
		StudentSvc:   studentSvc,
		FeeSvc:       feeSvc,
		InquirySvc:   inquirySvc,
		DashboardSvc: dashboardSvc,
		Validate:     validate,
		Translator:   translator,
	})
	return a
}

func ctx() context.Context {
	return context.Background()
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

// response is the envelope of API responses, with its data left raw.
type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// do serves a request to the app and decodes the response envelope.
func (a *app) do(t *testing.T, method, path string, data ...[]byte) (int, response) {
	t.Helper()

	req, rec := newRequest(method, path, data...)
	a.ServeHTTP(rec, req)

	var res response
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("do(%s %s) failed to decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, res
}

// decodeData unmarshals the response data into `v`.
func decodeData(t *testing.T, res response, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(res.Data, v); err != nil {
		t.Fatalf("decodeData() failed to decode %q: %v", string(res.Data), err)
	}
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runHTTPTests runs table tests whose responses are fully known.
func runHTTPTests(t *testing.T, a *app, tests []httpTest) {
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newRequest(tc.method, tc.path, tc.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tc, rec)
		})
	}
}
