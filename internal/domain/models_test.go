package domain_test

import (
	"errors"
	"testing"

	"roster-tracker/internal/domain"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPlayerFields(t *testing.T) {
	Convey("Player fields are trimmed before validation", t, func() {
		f := domain.PlayerFields{FirstName: "  Caitlin ", LastName: "Clark", Team: "\tIND"}
		So(f.Validate(), ShouldBeNil)
		So(f.Normalized(), ShouldResemble, domain.PlayerFields{FirstName: "Caitlin", LastName: "Clark", Team: "IND"})
	})

	Convey("Every blank field is named", t, func() {
		err := domain.PlayerFields{FirstName: "A", LastName: "  "}.Validate()
		So(errors.Is(err, domain.ErrValidation), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "last_name, team")
		So(err.Error(), ShouldNotContainSubstring, "first_name")
	})
}

func TestSeasonKey(t *testing.T) {
	Convey("The comparand key joins the full name and the season", t, func() {
		p := domain.Player{FirstName: "Caitlin", LastName: "Clark"}
		So(p.SeasonKey("2024"), ShouldEqual, "Caitlin Clark (2024)")
	})
}
