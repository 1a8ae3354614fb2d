package headless

import (
	zone "github.com/lrstanley/bubblezone"

	headlessview "logviewer-client/internal/ui/headless/view"
)

// View renders through the view package and resolves click zones.
func (m *headlessModel) View() string {
	return zone.Scan(headlessview.RenderApp(&m.ui, m.runtimeView()))
}
