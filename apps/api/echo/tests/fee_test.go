package tests

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/student"
	testutil "github.com/trezcool/shule/tests"
)

// feeData is a fee as rendered by the API.
type feeData struct {
	ID              int     `json:"id"`
	StudentID       int     `json:"studentId"`
	FeeType         string  `json:"feeType"`
	Amount          float64 `json:"amount"`
	PaidAmount      float64 `json:"paidAmount"`
	RemainingAmount float64 `json:"remainingAmount"`
	FullyPaid       bool    `json:"fullyPaid"`
	Status          string  `json:"status"`
	PaidDate        *string `json:"paidDate"`
	PaymentMethod   *string `json:"paymentMethod"`
	TransactionID   *string `json:"transactionId"`
}

func feeIDs(t *testing.T, res response) []int {
	var fees []feeData
	decodeData(t, res, &fees)
	ids := make([]int, 0, len(fees))
	for _, f := range fees {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestFeeAPI_create(t *testing.T) {
	a := setup(t)
	st := testutil.CreateStudent(t, a.studRepo, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)

	body := []byte(`{"studentId": ` + strconv.Itoa(st.ID) + `, "feeType": "Tuition", "amount": 4500.50, "dueDate": "2024-09-01T00:00:00Z"}`)
	code, res := a.do(t, http.MethodPost, "/api/fees", body)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Fee created successfully", res.Message)

	var f feeData
	decodeData(t, res, &f)
	assert.NotZero(t, f.ID)
	assert.Equal(t, st.ID, f.StudentID)
	assert.Equal(t, 4500.5, f.Amount)
	assert.Equal(t, 0.0, f.PaidAmount)
	assert.Equal(t, 4500.5, f.RemainingAmount)
	assert.False(t, f.FullyPaid)
	assert.Equal(t, fee.StatusPending, f.Status)
	assert.Nil(t, f.PaidDate)
	assert.Nil(t, f.PaymentMethod)

	runHTTPTests(t, a, []httpTest{
		{
			name:     "unknown student",
			method:   http.MethodPost,
			path:     "/api/fees",
			body:     []byte(`{"studentId": 999, "feeType": "Tuition", "amount": 100}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "Student not found with id: 999",
				"data": {"studentId": "Student not found with id: 999"}
			}`),
		},
		{
			name:     "negative amount",
			method:   http.MethodPost,
			path:     "/api/fees",
			body:     []byte(`{"studentId": ` + strconv.Itoa(st.ID) + `, "feeType": "Tuition", "amount": -5}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "amount: amount must be greater than 0",
				"data": {"amount": "amount must be greater than 0"}
			}`),
		},
		{
			name:     "sub-cent amount",
			method:   http.MethodPost,
			path:     "/api/fees",
			body:     []byte(`{"studentId": ` + strconv.Itoa(st.ID) + `, "feeType": "Tuition", "amount": 0.001}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "amount: amount must have at most 2 decimal places",
				"data": {"amount": "amount must have at most 2 decimal places"}
			}`),
		},
	})
}

func TestFeeAPI_payment(t *testing.T) {
	a := setup(t)
	st := testutil.CreateStudent(t, a.studRepo, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	f := testutil.CreateFee(t, a.feeRepo, st.ID, "Tuition", "4500")
	path := "/api/fees/" + strconv.Itoa(f.ID) + "/payment"

	code, res := a.do(t, http.MethodPost, path, []byte(`{"amount": 1500, "paymentMethod": "Card"}`))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Payment processed successfully", res.Message)

	var paid feeData
	decodeData(t, res, &paid)
	assert.Equal(t, 1500.0, paid.PaidAmount)
	assert.Equal(t, 3000.0, paid.RemainingAmount)
	assert.Equal(t, fee.StatusPartiallyPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, "Card", *paid.PaymentMethod)
	require.NotNil(t, paid.TransactionID)
	assert.NotEmpty(t, *paid.TransactionID)

	runHTTPTests(t, a, []httpTest{
		{
			name:     "exceeds balance",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"amount": 4000, "paymentMethod": "Card"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "Payment amount cannot exceed remaining amount: 3000.00",
				"data": {"amount": "Payment amount cannot exceed remaining amount: 3000.00"}
			}`),
		},
		{
			name:     "sub-cent amount",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"amount": 2999.995, "paymentMethod": "Card"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "amount: amount must have at most 2 decimal places",
				"data": {"amount": "amount must have at most 2 decimal places"}
			}`),
		},
		{
			name:     "missing method",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"amount": 100}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "paymentMethod: paymentMethod is required",
				"data": {"paymentMethod": "paymentMethod is required"}
			}`),
		},
		{
			name:     "unknown fee",
			method:   http.MethodPost,
			path:     "/api/fees/999/payment",
			body:     []byte(`{"amount": 100, "paymentMethod": "Cash"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"success": false, "message": "Fee not found with id: 999"}`),
		},
	})

	code, res = a.do(t, http.MethodPost, path, []byte(`{"amount": 3000, "paymentMethod": "Cash"}`))
	require.Equal(t, http.StatusOK, code)
	decodeData(t, res, &paid)
	assert.Equal(t, 4500.0, paid.PaidAmount)
	assert.True(t, paid.FullyPaid)
	assert.Equal(t, fee.StatusPaid, paid.Status)

	stored, err := a.feeRepo.GetFeeByID(ctx(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "4500", stored.PaidAmount.String())
	assert.Equal(t, "Cash", stored.PaymentMethod.String)
}

func TestFeeAPI_list(t *testing.T) {
	a := setup(t)
	jane := testutil.CreateStudent(t, a.studRepo, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	john := testutil.CreateStudent(t, a.studRepo, "John", "Doe", "john@example.com", "Physics", student.StatusActive)
	tuition := testutil.CreateFee(t, a.feeRepo, jane.ID, "Tuition", "1000")
	library := testutil.CreateFee(t, a.feeRepo, jane.ID, "Library", "50")
	other := testutil.CreateFee(t, a.feeRepo, john.ID, "Tuition", "1000")
	testutil.PayFee(t, a.feeRepo, library.ID, "50", time.Now())
	testutil.PayFee(t, a.feeRepo, other.ID, "10", time.Now())

	tests := []struct {
		name    string
		path    string
		message string
		want    []int
	}{
		{name: "all", path: "/api/fees", message: "Fees retrieved successfully", want: []int{tuition.ID, library.ID, other.ID}},
		{name: "by student", path: "/api/fees/student/" + strconv.Itoa(jane.ID), message: "Student fees retrieved successfully", want: []int{tuition.ID, library.ID}},
		{name: "pending by student", path: "/api/fees/student/" + strconv.Itoa(jane.ID) + "/pending", message: "Pending fees retrieved successfully", want: []int{tuition.ID}},
		{name: "by status", path: "/api/fees/status/Paid", message: "Fees retrieved by status successfully", want: []int{library.ID}},
		{name: "by partial status", path: "/api/fees/status/Partially%20Paid", message: "Fees retrieved by status successfully", want: []int{other.ID}},
		{name: "by type", path: "/api/fees/type/Tuition", message: "Fees retrieved by type successfully", want: []int{tuition.ID, other.ID}},
		{name: "unknown student", path: "/api/fees/student/999", message: "Student fees retrieved successfully", want: []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, res := a.do(t, http.MethodGet, tc.path)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, tc.message, res.Message)
			assert.Equal(t, tc.want, feeIDs(t, res))
		})
	}

	t.Run("retrieve", func(t *testing.T) {
		code, res := a.do(t, http.MethodGet, "/api/fees/"+strconv.Itoa(library.ID))
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Fee retrieved successfully", res.Message)

		var f feeData
		decodeData(t, res, &f)
		assert.True(t, f.FullyPaid)
		assert.Equal(t, 0.0, f.RemainingAmount)
	})
}

func TestFeeAPI_update(t *testing.T) {
	a := setup(t)
	st := testutil.CreateStudent(t, a.studRepo, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	f := testutil.CreateFee(t, a.feeRepo, st.ID, "Tuition", "1000")
	path := "/api/fees/" + strconv.Itoa(f.ID)

	code, res := a.do(t, http.MethodPut, path, []byte(`{"feeType": "Tuition 2024", "amount": 1200}`))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Fee updated successfully", res.Message)

	var updated feeData
	decodeData(t, res, &updated)
	assert.Equal(t, "Tuition 2024", updated.FeeType)
	assert.Equal(t, 1200.0, updated.Amount)
	assert.Equal(t, fee.StatusPending, updated.Status)

	runHTTPTests(t, a, []httpTest{
		{
			name:     "sub-cent amount",
			method:   http.MethodPut,
			path:     path,
			body:     []byte(`{"feeType": "Tuition", "amount": 1200.505}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "amount: amount must have at most 2 decimal places",
				"data": {"amount": "amount must have at most 2 decimal places"}
			}`),
		},
		{
			name:     "invalid status",
			method:   http.MethodPut,
			path:     path + "/status",
			body:     []byte(`{"status": "Overdue"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"success": false,
				"message": "status: status must be one of: Pending, Partially Paid, Paid",
				"data": {"status": "status must be one of: Pending, Partially Paid, Paid"}
			}`),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     path,
			wantCode: http.StatusOK,
			wantData: []byte(`{"success": true, "message": "Fee deleted successfully", "data": "Fee deleted successfully"}`),
		},
		{
			name:     "delete again",
			method:   http.MethodDelete,
			path:     path,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"success": false, "message": "Fee not found with id: ` + strconv.Itoa(f.ID) + `"}`),
		},
	})
}

func TestFeeAPI_updateStatus(t *testing.T) {
	a := setup(t)
	st := testutil.CreateStudent(t, a.studRepo, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	f := testutil.CreateFee(t, a.feeRepo, st.ID, "Tuition", "1000")

	code, res := a.do(t, http.MethodPut, "/api/fees/"+strconv.Itoa(f.ID)+"/status", []byte(`{"status": "Paid"}`))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Fee status updated successfully", res.Message)

	var updated feeData
	decodeData(t, res, &updated)
	assert.Equal(t, fee.StatusPaid, updated.Status)
	assert.Equal(t, 0.0, updated.PaidAmount)
}
