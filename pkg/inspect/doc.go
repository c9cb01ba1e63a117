// Package inspect serves a registry over HTTP for debugging and tooling.
//
// Routes:
//
//	GET  /stores                           list stores with their getters and actions
//	GET  /stores/{name}                    one store, including its current value
//	GET  /stores/{name}/getters/{getter}   read a getter
//	POST /stores/{name}/actions/{action}   call an action; body {"args": [...]} is optional
//	GET  /stores/{name}/watch              websocket stream of the store's value
//	POST /reset-all                        Registry.ResetAll
//	POST /clear-all                        Registry.ClearAll
//	GET  /metrics                          when a metrics handler is configured
//
// Action arguments arrive as decoded JSON, so they reach actions as
// float64, string, bool, []any or map[string]any. Numeric arguments convert
// to the integer types store.Arg asks for.
package inspect
