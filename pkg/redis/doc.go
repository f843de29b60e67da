// Package redis opens go-redis clients from a URL-based Config and exposes
// healthcheck and shutdown hooks for the application runtime.
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	app := upresume.New(
//		upresume.WithShutdownHook(redis.Shutdown(client)),
//	)
package redis
