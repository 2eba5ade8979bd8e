package handlers

import (
	"bufio"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/trentd187/domino-tournament/internal/live"
)

// keepAlive is how often an idle stream sends a comment line so proxies keep it open.
const keepAlive = 20 * time.Second

// StreamEvents handles GET /api/v1/live?round=N as a Server-Sent Events stream. Without a
// round the client receives every round's events.
func StreamEvents(hub *live.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round := live.AllRounds
		if q := c.Query("round"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 1 {
				return badRequest(c, "round must be a positive integer")
			}
			round = n
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		client := live.NewClient(round)
		hub.Register(client)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			// The hub closes Send on shutdown; a failed write means the client left.
			ticker := time.NewTicker(keepAlive)
			defer ticker.Stop()

			fmt.Fprint(w, ": connected\n\n")
			if w.Flush() != nil {
				hub.Unregister(client)
				return
			}
			for {
				select {
				case data, ok := <-client.Send:
					if !ok {
						return
					}
					fmt.Fprintf(w, "data: %s\n\n", data)
				case <-ticker.C:
					fmt.Fprint(w, ": ping\n\n")
				}
				if err := w.Flush(); err != nil {
					hub.Unregister(client)
					return
				}
			}
		}))
		return nil
	}
}
