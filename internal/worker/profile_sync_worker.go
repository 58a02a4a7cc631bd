package worker

import (
	"github.com/nikobathrooms/niko-auth-gateway/internal/service"
)

// StartProfileSyncWorker installs the CMS write-through handlers.
func StartProfileSyncWorker(profileSync *service.ProfileSyncService) {
	if profileSync == nil {
		return
	}
	profileSync.RegisterHandlers()
}
