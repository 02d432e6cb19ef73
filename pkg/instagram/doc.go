// Package instagram is a client for Instagram's unofficial web API.
//
// A Client owns one session. It is built from exactly one of an explicit
// cookie, a session string exported earlier, or a username and password:
//
//	client, err := instagram.New(ctx, instagram.Credentials{
//	    Username: "someone",
//	    Password: os.Getenv("INSTAGRAPH_PASSWORD"),
//	})
//	if err != nil {
//	    return err // configuration error, nothing was sent
//	}
//	if client.Phase() != instagram.PhaseAuthenticated {
//	    return fmt.Errorf("login failed")
//	}
//	saved, _ := client.ExportSession()
//
// Feeds are paginated with opaque cursors and flattened. The count is a
// floor: whole pages are kept, so more posts than asked for may come back.
//
//	posts := client.PostsFromTimeline(ctx, 50)
//	posts, err = client.PostsFromUser(ctx, "nasa", 30)
//
// Request failures inside feed operations are logged and end the feed with
// whatever was collected. Only username resolution returns its error.
//
// The HTTP side sits behind the Transport interface so tests and callers can
// substitute their own.
package instagram
