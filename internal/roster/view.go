package roster

import (
	"roster-tracker/internal/domain"
	"roster-tracker/internal/form"
	"roster-tracker/internal/resource"
)

type ErrorView struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func errorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{Kind: domain.Kind(err), Message: err.Error()}
}

type FetchView[V any] struct {
	Status resource.Status `json:"status"`
	Value  V               `json:"value"`
	Error  *ErrorView      `json:"error,omitempty"`
}

func fetchView[V any](st resource.State[V]) FetchView[V] {
	return FetchView[V]{Status: st.Status, Value: st.Value, Error: errorView(st.Err)}
}

type FormView struct {
	Mode  form.Mode  `json:"mode"`
	Draft form.Draft `json:"draft"`
	Busy  bool       `json:"busy"`
	Error *ErrorView `json:"error,omitempty"`
}

// View is a point-in-time rendering of everything a presentation layer needs.
type View struct {
	Key       string                              `json:"key"`
	List      FetchView[[]domain.Player]          `json:"list"`
	Primary   FetchView[*domain.Player]           `json:"primary"`
	Secondary FetchView[[]domain.SimilarityMatch] `json:"secondary"`
	Form      FormView                            `json:"form"`
}
