package student

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aanand-mishra/records-api/internal/service"
	"github.com/aanand-mishra/records-api/internal/types"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) GetAll(ctx context.Context) ([]types.Student, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.Student), args.Error(1)
}

func (m *serviceMock) GetByID(ctx context.Context, id int64) (types.Student, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Student), args.Error(1)
}

func (m *serviceMock) AddMany(ctx context.Context, students []types.Student) ([]types.Student, error) {
	args := m.Called(ctx, students)
	return args.Get(0).([]types.Student), args.Error(1)
}

func (m *serviceMock) Update(ctx context.Context, id int64, patch types.StudentPatch) (types.Student, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(types.Student), args.Error(1)
}

func (m *serviceMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ Service = (*serviceMock)(nil)
var _ Service = (*service.Service)(nil)

func strPtr(s string) *string { return &s }

func setupRouter(svc Service) *http.ServeMux {
	router := http.NewServeMux()
	Register(router, svc)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetList(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("GetAll", mock.Anything).Return([]types.Student{}, nil).Once()

		w := serve(setupRouter(svc), http.MethodGet, "/records", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("NilIsEncodedAsEmptyArray", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("GetAll", mock.Anything).Return([]types.Student(nil), nil).Once()

		w := serve(setupRouter(svc), http.MethodGet, "/records", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Failure", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("GetAll", mock.Anything).Return([]types.Student(nil), errors.New("database is locked")).Once()

		w := serve(setupRouter(svc), http.MethodGet, "/records", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"unable to list students"}`, w.Body.String())
	})
}

func TestGetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("GetByID", mock.Anything, int64(1)).Return(types.Student{
			ID:         1,
			Surname:    "Petrov",
			Name:       "Petr",
			Patronymic: strPtr("Petrovich"),
			Age:        20,
		}, nil).Once()

		w := serve(setupRouter(svc), http.MethodGet, "/records/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"id":1,"surname":"Petrov","name":"Petr","patronymic":"Petrovich","age":20,"averageMark":0}`,
			w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("GetByID", mock.Anything, int64(1)).Return(types.Student{}, service.ErrNotFound).Once()

		before := studentErrorNotFoundTotal.Get()
		w := serve(setupRouter(svc), http.MethodGet, "/records/1", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"student not found"}`, w.Body.String())
		assert.Equal(t, before+1, studentErrorNotFoundTotal.Get())
		svc.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		svc := &serviceMock{}

		w := serve(setupRouter(svc), http.MethodGet, "/records/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid id")
		svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestNew(t *testing.T) {
	body := `[{"surname":"Ivanov","name":"Ivan","age":20,"averageMark":4.5},` +
		`{"surname":"Petrov","name":"Petr","age":22,"averageMark":4.2}]`

	t.Run("Created", func(t *testing.T) {
		in := []types.Student{
			{Surname: "Ivanov", Name: "Ivan", Age: 20, AverageMark: 4.5},
			{Surname: "Petrov", Name: "Petr", Age: 22, AverageMark: 4.2},
		}
		out := []types.Student{
			{ID: 1, Surname: "Ivanov", Name: "Ivan", Patronymic: strPtr("Ivanovich"), Age: 20, AverageMark: 4.5},
			{ID: 2, Surname: "Petrov", Name: "Petr", Patronymic: strPtr("Petrovich"), Age: 22, AverageMark: 4.2},
		}

		svc := &serviceMock{}
		svc.On("AddMany", mock.Anything, in).Return(out, nil).Once()

		before := studentsCreatedTotal.Get()
		w := serve(setupRouter(svc), http.MethodPost, "/records", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":1`)
		assert.Contains(t, w.Body.String(), `"id":2`)
		assert.Equal(t, before+2, studentsCreatedTotal.Get())
		svc.AssertExpectations(t)
	})

	t.Run("FailureHidesCause", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("AddMany", mock.Anything, mock.Anything).
			Return([]types.Student(nil), errors.New("CHECK constraint failed: average_mark")).Once()

		w := serve(setupRouter(svc), http.MethodPost, "/records",
			`[{"surname":"Ivanov","name":"Ivan","age":20,"averageMark":4.5}]`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"unable to create students"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "CHECK")
		svc.AssertExpectations(t)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		svc := &serviceMock{}

		w := serve(setupRouter(svc), http.MethodPost, "/records", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"request body is empty"}`, w.Body.String())
		svc.AssertNotCalled(t, "AddMany", mock.Anything, mock.Anything)
	})

	t.Run("NotAnArray", func(t *testing.T) {
		svc := &serviceMock{}

		w := serve(setupRouter(svc), http.MethodPost, "/records", `{"surname":"Ivanov"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "AddMany", mock.Anything, mock.Anything)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Merged", func(t *testing.T) {
		merged := types.Student{
			ID:          1,
			Surname:     "Ivanov",
			Name:        "Ivan",
			Patronymic:  strPtr("Petrovich"),
			Age:         21,
			AverageMark: 4.5,
		}
		patch := types.StudentPatch{
			Patronymic: types.Some("Petrovich"),
			Age:        types.Some(21),
		}

		svc := &serviceMock{}
		svc.On("Update", mock.Anything, int64(1), patch).Return(merged, nil).Once()

		w := serve(setupRouter(svc), http.MethodPatch, "/records/1",
			`{"patronymic":"Petrovich","age":21}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"id":1,"surname":"Ivanov","name":"Ivan","patronymic":"Petrovich","age":21,"averageMark":4.5}`,
			w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("Update", mock.Anything, int64(7), mock.Anything).Return(types.Student{}, service.ErrNotFound).Once()

		w := serve(setupRouter(svc), http.MethodPatch, "/records/7", `{"age":21}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"student not found"}`, w.Body.String())
	})

	t.Run("StoreRejects", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("Update", mock.Anything, int64(1), mock.Anything).
			Return(types.Student{}, errors.New("CHECK constraint failed")).Once()

		w := serve(setupRouter(svc), http.MethodPatch, "/records/1", `{"averageMark":9}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"unable to update student"}`, w.Body.String())
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := &serviceMock{}

		w := serve(setupRouter(svc), http.MethodPatch, "/records/1", `{"age":"old"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	t.Run("NoContent", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("Delete", mock.Anything, int64(1)).Return(nil).Once()

		w := serve(setupRouter(svc), http.MethodDelete, "/records/1", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("FailureHidesCause", func(t *testing.T) {
		svc := &serviceMock{}
		svc.On("Delete", mock.Anything, int64(1)).Return(errors.New("disk I/O error")).Once()

		w := serve(setupRouter(svc), http.MethodDelete, "/records/1", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"unable to delete student"}`, w.Body.String())
	})
}
