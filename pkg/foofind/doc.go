// Package foofind embeds the file search stack in a Go program: it plans keyword
// searches, runs them on a SphinxQL daemon and resolves one answer per query,
// without going through the HTTP API.
//
//	client, _ := foofind.New(ctx,
//	    foofind.WithDaemon("127.0.0.1:9306"),
//	    foofind.WithRedis("127.0.0.1:6379", ""),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "ubuntu iso", foofind.Filters{Type: "software"}, 1)
//	for _, m := range res.Matches {
//	    fmt.Println(m.FileID, m.Server)
//	}
//
// Maintenance calls (Block, Unblock) update the daemon's blocked attribute and
// report how many documents were touched.
package foofind
