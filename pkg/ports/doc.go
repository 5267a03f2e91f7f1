/*
Package ports defines the driven ports (interfaces) for the stepmill engine.

These interfaces decouple the interpreter from its collaborators: the host
that supplies task handler implementations, and the handlers themselves.

# Key Interfaces

  - HandlerResolver: maps a Task state's resource identifier to a handler.
  - TaskHandler: the invocable unit of work bound to a Task state.
  - TaskContext: the callback bundle a running handler uses to signal
    completion back into the engine.
*/
package ports
