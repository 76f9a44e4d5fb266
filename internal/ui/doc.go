// Package ui contains the Bubble Tea program that shows menu messages in the
// terminal. The Model never touches a menu tree directly: it only sees the
// frames the dispatcher sends through a Screen, and turns key presses back
// into event paths.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function (key presses, screen updates, dispatch results, reloads).
//   - Enter on a key hands its event path to the internal/ui/command bus,
//     which runs the dispatch as a tea.Cmd. Escape asks the dispatcher to
//     navigate to the parent menu.
//   - While a dispatch runs, the dispatcher calls the Screen transport. The
//     Screen only queues those calls; the Model applies them on the UI
//     goroutine when the screen wakes it up or the dispatch result arrives.
//
// State ownership:
//   - Every tree shown on screen gets one message, held as an
//     internal/ui/state.Level with the visible keys, the filter and the
//     viewport. A replace frame resets it, a keyboard patch keeps cursor and
//     filter on the keys that survive.
//   - Removing a message either drops it or, when the text is kept, leaves it
//     on screen without a keyboard.
//
// Layout reloads:
//   - A backend.Watcher streams reloaded layouts; each one is handed to the
//     Reloader, which swaps the registered tree and opens the new one.
package ui
