package streams

import (
	"logviewer-client/internal/api"
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/handle"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
	"logviewer-client/internal/streamctl"
	"logviewer-client/internal/toolbar"
)

// Deps are the collaborators shared by every stream and opener. All of them
// are used from the event loop only.
type Deps struct {
	Sender     api.Sender
	Bus        *eventbus.Bus
	Toolbar    *toolbar.Registry
	Controller *streamctl.Controller
	Presenter  modal.Presenter
	Store      *settings.Store
	IDs        *handle.Allocator
	Logger     *logging.Logger
}

func (d *Deps) mustValidate(caller string) {
	switch {
	case d == nil:
		panic(caller + ": deps must not be nil")
	case d.Sender == nil:
		panic(caller + ": sender must not be nil")
	case d.Bus == nil:
		panic(caller + ": bus must not be nil")
	case d.Toolbar == nil:
		panic(caller + ": toolbar must not be nil")
	case d.Controller == nil:
		panic(caller + ": controller must not be nil")
	case d.Presenter == nil:
		panic(caller + ": presenter must not be nil")
	case d.Store == nil:
		panic(caller + ": store must not be nil")
	case d.IDs == nil:
		panic(caller + ": ids must not be nil")
	case d.Logger == nil:
		panic(caller + ": logger must not be nil")
	}
}
