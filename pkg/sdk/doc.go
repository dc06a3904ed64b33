// Package liquiditick embeds the liquiditick freemium gate in a Go program.
//
// A Client owns the usage store and the opportunity source. Each client
// installation gets a handle that meters Free tier fetches against a daily
// quota, lets Pro installations through, and falls back to demo data when
// the source is offline.
//
//	client, _ := liquiditick.New(ctx,
//	    liquiditick.WithRedis("localhost:6379", ""),
//	    liquiditick.WithSQLite("scanner.db", false),
//	    liquiditick.WithDailyLimit(10),
//	)
//	defer client.Close()
//
//	inst, _ := client.Installation(installationID)
//	res, _ := inst.Opportunities(ctx, liquiditick.Filters{}, true)
//	if res.Denied {
//	    fmt.Println(res.Prompt.Message)
//	}
package liquiditick
