// Package healthbridge embeds the HealthBridge catalog query engine in a Go
// program backed by Redis.
//
// The catalog holds four collections (hospitals, doctors, treatments and
// blogs). Listings support free-text search, facet filters, sorting and an
// incremental "show more" page.
//
//	client, _ := healthbridge.New(ctx, healthbridge.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	page, _ := client.Catalog(healthbridge.Hospitals).Query(ctx, healthbridge.Query{
//	    FreeText: "apollo",
//	    Facets:   map[string]string{"city": "Chennai"},
//	    Sort:     healthbridge.SortNameAsc,
//	})
//
// Stateful listings keep the visible count across selection changes:
//
//	cur, _ := client.Catalog(healthbridge.Doctors).Cursor(ctx)
//	cur.SetFacet("specialty", "Cardiology")
//	cur.ShowMore()
//	page := cur.Page()
package healthbridge
