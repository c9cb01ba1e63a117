// Package store provides named, reactive, optionally persisted state
// containers and the registry that activates them.
//
// A Store is declared with a name, an initial value and a save strategy. It
// is inert until a Registry registers it: registration checks that the name
// is unused, restores any persisted record and binds the store to an
// observable cell. From then on application code reads through Getters and
// mutates through Actions; every mutation is written to the session or
// durable backend chosen by the strategy.
//
//	type Cart struct {
//	    Items []string `json:"items"`
//	}
//
//	var CartStore = store.New("cart", Cart{}, store.Durable).
//	    ExtendActions(func(st *store.State[Cart]) store.Actions {
//	        return store.Actions{
//	            "add": func(args ...any) error {
//	                item, err := store.Arg[string](args, 0)
//	                if err != nil {
//	                    return err
//	                }
//	                return st.Update(func(c Cart) Cart {
//	                    c.Items = append(c.Items, item)
//	                    return c
//	                })
//	            },
//	        }
//	    })
//
//	reg := store.NewRegistry(store.WithDurableBackend(backend))
//	if err := reg.Register(CartStore); err != nil {
//	    return err
//	}
//	_ = CartStore.Actions().Call("add", "book")
//	cart, _ := CartStore.Value()
//
// Reads return deep copies, so state can only change through actions.
// Getters read through the cell, so a reactive.Effect or reactive.Memo that
// calls them re-runs when the store changes.
package store
