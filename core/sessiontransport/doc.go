// Package sessiontransport adapts concrete transports to the session.Socket
// interface.
//
// The WS adapter wraps a gorilla/websocket connection. A typical HTTP
// handler upgrades the request and hands the connection to a Session:
//
//	upgrader := sessiontransport.NewUpgrader(sessiontransport.DefaultConfig())
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    conn, err := upgrader.Upgrade(w, r, nil)
//	    if err != nil {
//	        return
//	    }
//	    sock := sessiontransport.NewWS(conn)
//	    ids, err := sessiontransport.RequestUserSession(r.Context(), sock)
//	    if err != nil {
//	        return
//	    }
//	    sess := sessions.Lookup(ids)
//	    sess.NewConnection(r.Context(), sock)
//	    _ = sess.HandleConnection(r.Context(), sock)
//	}
package sessiontransport
