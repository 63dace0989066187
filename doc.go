// Package upload implements a resumable chunked upload manager.
//
// A caller initializes a session with the file's metadata and receives a
// chunk plan; it then transmits each chunk independently, in any order, and
// finally asks the manager to assemble the chunks into one object in the
// configured storage backend. Sessions that are neither completed nor
// cancelled are evicted once they pass their expiry.
//
// The manager owns all session state and is safe for concurrent use from a
// pool of request handlers. It holds no internal timers: expiry sweeps run
// only when the caller invokes Cleanup, directly or through a Reaper.
//
// Example:
//
//	objStore, err := store.NewS3(ctx, "my-bucket", store.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//	mgr, err := upload.New(objStore, cfg)
//	if err != nil {
//	    return err
//	}
//
//	plan, err := mgr.InitUpload("user-1", uploadtypes.Metadata{
//	    Filename:    "photo.png",
//	    ContentType: "image/png",
//	    TotalSize:   10 << 20,
//	})
package upload
