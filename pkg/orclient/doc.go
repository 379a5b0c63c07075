// Package orclient provides the primary entry point for constructing a
// roster API client that implements the oneroster.Client interface.
//
// It wires configuration, the HTTP transport and authentication on top of
// the connection and record types defined in the oneroster package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/oneroster/pkg/oneroster"
//	  "github.com/fivetwenty-io/oneroster/pkg/orclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := orclient.New(&oneroster.Config{
//	    APIURL:    "https://district.oneroster.com/ims/oneroster/v1p1",
//	    AppID:     "key",
//	    AppSecret: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  students, err := cli.Students().All(ctx, &oneroster.ListOptions{Filter: "status='active'"})
//	  if err != nil { log.Fatal(err) }
//	  log.Printf("%d students", len(students))
//	}
//
// Gateway timeouts
//
// A 504 is returned as *oneroster.GatewayTimeoutError and reported to the
// configured ErrorSink. Set Config.RetryAttempts to have the resource clients
// retry such calls.
package orclient
