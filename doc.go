// Package ytarchive archives the playlists of a YouTube account and the
// metadata of every video they reference as JSON files.
//
// A run lists the playlists of the authenticated user, stores the list,
// walks every playlist storing its items, then looks up all referenced
// videos in batches of at most 50 identifiers and stores one file per video.
// Playlist and playlist-item files are refreshed on every run; video files
// are written once and never replaced. Videos referenced by a playlist but
// not returned by the lookup (deleted, private or blocked) are counted as
// unavailable and can be listed at the end of the run.
//
// Basic use:
//
//	creds, err := auth.LoadCredentials("creds-user.json")
//	if err != nil {
//		return err
//	}
//	c := client.NewWith(client.Config{TokenSource: creds.TokenSource(ctx)})
//	svc := dataapi.New(c.HTTPClient)
//	summary, err := ytarchive.New(svc).WithDataDir("data").Run(ctx)
package ytarchive
