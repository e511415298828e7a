package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/dsemenov/mediaport/internal/audit"
	"github.com/dsemenov/mediaport/internal/contentstore"
	"github.com/dsemenov/mediaport/internal/database/runs"
	"github.com/dsemenov/mediaport/internal/services"
	"github.com/dsemenov/mediaport/internal/settingsstore"
	"github.com/dsemenov/mediaport/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// ContentStore implementations
var _ services.ContentStore = (*contentstore.Store)(nil)

// RunStore implementations
var _ services.RunStore = (*runs.Repository)(nil)

// RunSettings implementations
var _ services.RunSettings = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Task Queue
// =============================================================================

// TaskDispatcher implementations
var _ services.TaskDispatcher = (*tasks.Dispatcher)(nil)
var _ tasks.CompletionEnqueuer = (*tasks.Dispatcher)(nil)

// =============================================================================
// Observability
// =============================================================================

// AuditLogger implementations
var _ services.AuditLogger = (*audit.Service)(nil)
