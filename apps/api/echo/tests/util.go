package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	. "github.com/sogrim/technion-sogrim-sub000/apps/api/echo"
	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
	logsvc "github.com/sogrim/technion-sogrim-sub000/services/logger"
	inmemdb "github.com/sogrim/technion-sogrim-sub000/storage/database/inmem"
)

var (
	conf = &core.Config{
		AppName:   "Sogrim",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type env struct {
	app    *Server
	stRepo student.Repository
	stSvc  *student.Service
}

func setup(t *testing.T) env {
	t.Helper()

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	stRepo := inmemdb.NewStudentRepository(inmemdb.Open())
	stSvc := student.NewService(stRepo, validate)

	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		StudentSvc:     stSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return env{app: app, stRepo: stRepo, stSvc: stSvc}
}

func createStudent(t *testing.T, svc *student.Service, name, email string, isAdmin bool) student.Student {
	t.Helper()
	st, err := svc.Create(context.Background(), student.NewStudent{Name: name, Email: email, IsAdmin: isAdmin})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return st
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, st student.Student) string {
	token, err := GenerateToken(GetStudentClaims(st, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
