// Package broute provides an HTTP routing engine with typed path rules and an explicit response lifecycle.
//
// # Overview
//
// broute routes a parsed request to the first registered handler that both matches and fully handles it.
// Routing is strictly ordered: candidates are tried in registration order and a handler may decline a
// request it matched, after which the next candidate gets a turn. When nobody handles the request the
// dispatch ends in the distinct [Exhausted] outcome and the server layer renders a default response.
//
// A minimal example:
//
//	rt := broute.NewRouter()
//	rt.Get("/items/<int:id>", func(req *broute.Request, resp *broute.Response, next broute.Next, c *broute.Context) bool {
//	    item, ok := db.GetItem(c.Param("id"))
//	    if !ok {
//	        return next() // let a later route have a go
//	    }
//	    _ = resp.ExpandUTF8(item.Name)
//	    return true
//	}, "get-item")
//
// # Rules and Types
//
// A rule is a path template with typed placeholders in angle brackets:
//
//	/users/<int:id>/posts/<slug:slug>
//
// Each type name is looked up in a [TypeRegistry] that maps names to regular expression fragments. A
// placeholder without a type uses [DefaultType]. [DefaultTypes] returns a registry with "string", "int",
// "float", "slug", "uuid" and "path" pre-registered. Rules are compiled by [CompileRule] into a
// whole-path matcher; malformed rules, unknown types and duplicate names fail with a [*CompileError].
//
// # Routes
//
// A [Route] matches a request and can build a URL back from parameters. There are two variants:
//
//   - [ExactRoute] compares the path literally and extracts nothing
//   - [RuleRoute] matches a compiled [Rule] and copies every named capture into the [Context]
//
// Routes that are registered with a name can be reversed with [Router.Reverse]:
//
//	url, err := rt.Reverse("get-item", map[string]string{"id": "42"}) // "/items/42"
//
// # Handlers and Sequencing
//
// A [HandlerFunc] receives the request, the response, a [Next] continuation and the request-scoped
// [Context]. It returns whether it fully handled the request. [Sequence] composes two handlers so the
// first one runs in front of the second, [Chain] folds any number of them. Middleware registered with
// [Router.Use] is sequenced in front of every route registered afterwards:
//
//	rt.Use(func(req *broute.Request, resp *broute.Response, next broute.Next, c *broute.Context) bool {
//	    start := time.Now()
//	    defer func() { log.Printf("%s %s took %v", req.Method, req.Path(), time.Since(start)) }()
//	    return next()
//	})
//
// For handlers that only need to produce a response, [Terminal] turns an error returning function into
// a HandlerFunc. Returned errors are rendered with [WriteError]:
//
//	return broute.NewError(broute.CodeNotFound, errors.New("no such item"))
//
// # Response Lifecycle
//
// The [Response] writes the head (status line and headers) at most once and always before the first
// body byte. Accessing [Response.Body] writes the head implicitly. Converters such as [Chunked] and
// [Gzip] stack transforming filters onto the body stream and adjust the headers to match. The helpers
// [Response.Expand], [Response.ExpandUTF8] and [Response.End] cover the common case of a complete
// in-memory body.
//
// Every operation that performs I/O comes in a blocking form and a form that accepts a context.Context
// for cancellation. A head write canceled before any byte reached the connection can be retried; any
// other failure is final.
//
// # Mounting
//
// [Router.Mount] dispatches a path prefix into a sub-router with the prefix stripped. When the sub-router
// exhausts its routes the parent continues with its own next candidate. Values that parent middleware
// stored on the [Context] are visible inside the sub-router.
//
// # Converting to Standard Library
//
// [ToStd] serves a Router from a standard http.Server. It takes over the connection, renders "404 Not
// Found" for exhausted dispatches, writes the head on teardown for handlers that never did and closes the
// connection afterwards.
package broute
