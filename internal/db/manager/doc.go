// Package manager checks for and creates PostgreSQL databases.
//
// Database names are quoted with pgx.Identifier.Sanitize(), so names with
// spaces, quotes or semicolons are created verbatim.
//
//	mgr := manager.New()
//	exists, err := mgr.Exists(ctx, db.NewPoolAdapter(pool), "olist")
//	if err == nil && !exists {
//	    err = mgr.Create(ctx, db.NewPoolAdapter(pool), "olist")
//	}
package manager
