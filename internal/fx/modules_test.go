package fx

import (
	"path/filepath"
	"testing"

	"roster-tracker/internal/roster"
	"roster-tracker/internal/server"
	"roster-tracker/internal/service"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/fx"
)

func TestModules(t *testing.T) {
	Convey("The gateway graph resolves", t, func() {
		t.Setenv("ROSTER_API_BASE_URL", "http://localhost:8000")
		err := fx.ValidateApp(GatewayModule, fx.Invoke(func(*roster.Model, *server.ViewServer) {}))
		So(err, ShouldBeNil)
	})

	Convey("The backend graph resolves", t, func() {
		t.Setenv("ROSTER_DB_PATH", filepath.Join(t.TempDir(), "roster.db"))
		err := fx.ValidateApp(BackendModule, fx.Invoke(func(*server.PlayerServer, *service.Seeder) {}))
		So(err, ShouldBeNil)
	})
}
