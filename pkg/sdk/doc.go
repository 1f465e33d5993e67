// Package openfda embeds the openFDA device classification search in a Go
// program, without running an MCP server.
//
// The client runs the same pipeline as the search_device_classifications
// tool: argument validation, the openFDA request with a bounded retry on
// timeout, and rendering.
//
//	client, _ := openfda.New(openfda.WithTimeout(10 * time.Second))
//
//	// Typed records
//	res, _ := client.Search(ctx, "device_class:3", 5)
//	for _, c := range res.Classifications {
//	    fmt.Println(c.DeviceName, c.ProductCode)
//	}
//
//	// The text report an MCP client would receive
//	text, _ := client.CallTool(ctx, openfda.ToolName, map[string]any{"search": "pacemaker"})
package openfda
