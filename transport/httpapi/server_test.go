package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/features/identity"
	"github.com/AntonStoeckl/library-loans-go/features/inventory"
	"github.com/AntonStoeckl/library-loans-go/features/loans"
	"github.com/AntonStoeckl/library-loans-go/features/reports"
	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/testutil/helper"
	. "github.com/AntonStoeckl/library-loans-go/transport/httpapi"
)

type api struct {
	t      *testing.T
	server *echo.Echo
	logSpy *helper.LogHandlerSpy
}

func givenAPI(t *testing.T) api {
	store := helper.NewSQLiteStore(t)
	clock := helper.NewFakeClock(helper.FakeNow())

	identityService, err := identity.NewService(store, helper.GivenFastHasher(t), identity.WithClock(clock.Now))
	require.NoError(t, err)
	inventoryService, err := inventory.NewService(store, inventory.WithClock(clock.Now))
	require.NoError(t, err)
	loanService, err := loans.NewService(store, loans.WithClock(clock.Now))
	require.NoError(t, err)
	reportService, err := reports.NewService(store, reports.WithClock(clock.Now))
	require.NoError(t, err)

	logSpy := helper.NewLogHandlerSpy(false)
	server := NewServer(Services{
		Identity:  identityService,
		Inventory: inventoryService,
		Loans:     loanService,
		Reports:   reportService,
	}, logSpy.Logger())

	return api{t: t, server: server, logSpy: logSpy}
}

func (a api) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)

	return rec
}

// created performs the request, expects 201 and returns the "id" of the response.
func (a api) created(path, body string) string {
	rec := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	return jsoniter.Get(rec.Body.Bytes(), "id").ToString()
}

func (a api) givenPeopleAndBook() (readerID, librarianID, bookID string) {
	readerID = a.created("/api/v1/readers",
		`{"name":"Rita","email":"rita@example.org","password":"pw","address":"Elm 3","zone":"east_branch"}`)
	librarianID = a.created("/api/v1/librarians",
		`{"name":"Lars","email":"lars@example.org","password":"pw","employeeNumber":"E-1"}`)
	bookID = a.created("/api/v1/materials/books", `{"title":"Beloved","pageCount":324}`)

	return readerID, librarianID, bookID
}

func loanBody(readerID, librarianID, materialID, due string) string {
	return `{"readerId":"` + readerID + `","librarianId":"` + librarianID +
		`","materialId":"` + materialID + `","estimatedReturnDate":"` + due + `"}`
}

func Test_Health(t *testing.T) {
	// setup
	a := givenAPI(t)

	// act
	rec := a.do(http.MethodGet, "/health", "")

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func Test_LoanLifecycle_OverHTTP(t *testing.T) {
	// setup
	a := givenAPI(t)
	readerID, librarianID, bookID := a.givenPeopleAndBook()

	// act
	loanID := a.created("/api/v1/loans", loanBody(readerID, librarianID, bookID, "2026-03-20"))
	conflict := a.do(http.MethodPost, "/api/v1/loans", loanBody(readerID, librarianID, bookID, "2026-03-20"))
	approved := a.do(http.MethodPost, "/api/v1/loans/"+loanID+"/approve", "")
	approvedAgain := a.do(http.MethodPost, "/api/v1/loans/"+loanID+"/approve", "")
	overdue := a.do(http.MethodGet, "/api/v1/loans/"+loanID+"/overdue", "")
	returned := a.do(http.MethodPut, "/api/v1/loans/"+loanID+"/state", `{"state":"returned"}`)
	summary := a.do(http.MethodGet, "/api/v1/reports/summary", "")

	// assert
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, http.StatusOK, approved.Code)
	assert.Equal(t, string(lending.LoanInProgress), jsoniter.Get(approved.Body.Bytes(), "state").ToString())
	assert.Equal(t, http.StatusConflict, approvedAgain.Code)
	assert.Equal(t, http.StatusOK, overdue.Code)
	assert.False(t, jsoniter.Get(overdue.Body.Bytes(), "overdue").ToBool())
	assert.Equal(t, http.StatusOK, returned.Code)
	assert.Equal(t, string(lending.LoanReturned), jsoniter.Get(returned.Body.Bytes(), "state").ToString())
	assert.Equal(t, http.StatusOK, summary.Code)
	assert.Equal(t, 1, jsoniter.Get(summary.Body.Bytes(), "countsByState", "RETURNED").ToInt())
	assert.Equal(t, "2026-03-10", jsoniter.Get(summary.Body.Bytes(), "generatedOn").ToString())
}

func Test_RequestLoan_When_ReaderIsSuspended(t *testing.T) {
	// setup
	a := givenAPI(t)
	readerID, librarianID, bookID := a.givenPeopleAndBook()

	// arrange
	suspend := a.do(http.MethodPut, "/api/v1/readers/"+readerID+"/status", `{"status":"SUSPENDED"}`)
	require.Equal(t, http.StatusOK, suspend.Code, suspend.Body.String())

	// act
	rec := a.do(http.MethodPost, "/api/v1/loans", loanBody(readerID, librarianID, bookID, "2026-03-20"))

	// assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func Test_Errors_When_RequestsAreBad(t *testing.T) {
	// setup
	a := givenAPI(t)
	readerID, librarianID, bookID := a.givenPeopleAndBook()
	unknownID := helper.GivenUniqueID(t).String()

	testCases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "malformed json", method: http.MethodPost, path: "/api/v1/loans", body: `{"readerId":`, wantStatus: http.StatusBadRequest},
		{name: "missing ids", method: http.MethodPost, path: "/api/v1/loans", body: `{"estimatedReturnDate":"2026-03-20"}`, wantStatus: http.StatusBadRequest},
		{name: "date in the past", method: http.MethodPost, path: "/api/v1/loans", body: loanBody(readerID, librarianID, bookID, "2026-03-01"), wantStatus: http.StatusBadRequest},
		{name: "unknown loan", method: http.MethodGet, path: "/api/v1/loans/" + unknownID, wantStatus: http.StatusNotFound},
		{name: "malformed id", method: http.MethodGet, path: "/api/v1/loans/not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "unknown material", method: http.MethodPost, path: "/api/v1/loans", body: loanBody(readerID, librarianID, unknownID, "2026-03-20"), wantStatus: http.StatusNotFound},
		{name: "duplicate email", method: http.MethodPost, path: "/api/v1/librarians", body: `{"name":"X","email":"RITA@example.org","password":"pw","employeeNumber":"E-2"}`, wantStatus: http.StatusConflict},
		{name: "blank book title", method: http.MethodPost, path: "/api/v1/materials/books", body: `{"title":" ","pageCount":3}`, wantStatus: http.StatusBadRequest},
		{name: "pending target state", method: http.MethodPut, path: "/api/v1/loans/" + unknownID + "/state", body: `{"state":"PENDING"}`, wantStatus: http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := a.do(tc.method, tc.path, tc.body)

			// assert
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, jsoniter.Get(rec.Body.Bytes(), "message").ToString())
		})
	}
}

func Test_VerifyCredential_OverHTTP(t *testing.T) {
	// setup
	a := givenAPI(t)
	a.givenPeopleAndBook()

	// act
	valid := a.do(http.MethodPost, "/api/v1/credentials/verify", `{"email":"rita@example.org","password":"pw"}`)
	invalid := a.do(http.MethodPost, "/api/v1/credentials/verify", `{"email":"rita@example.org","password":"nope"}`)

	// assert
	assert.JSONEq(t, `{"valid":true}`, valid.Body.String())
	assert.JSONEq(t, `{"valid":false}`, invalid.Body.String())
}

func Test_Person_When_Fetched_It_HidesTheCredential(t *testing.T) {
	// setup
	a := givenAPI(t)
	readerID, _, _ := a.givenPeopleAndBook()

	// act
	rec := a.do(http.MethodGet, "/api/v1/persons/"+readerID, "")

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")
	assert.Equal(t, "EAST_BRANCH", jsoniter.Get(rec.Body.Bytes(), "reader", "zone").ToString())
}

func Test_RequestLogger_When_RequestIsServed(t *testing.T) {
	// setup
	a := givenAPI(t)

	// act
	a.do(http.MethodGet, "/api/v1/materials?q=none", "")

	// assert
	assert.True(t, a.logSpy.HasInfoLogWithMessage("http request").
		WithAttr("path", "/api/v1/materials").
		WithAttr("status", "200").
		WithDurationMS().
		Assert())
}

func Test_StatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(lending.ErrNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(lending.ErrLoanLimitReached))
	assert.Equal(t, http.StatusBadRequest, StatusFor(lending.ErrInvalidDate))
	assert.Equal(t, http.StatusConflict, StatusFor(lending.ErrConcurrencyConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}
