// Package ui contains the Bubble Tea program that powers the terminal
// front-end. The Model type focuses on message orchestration; the tile grid,
// selection and directory walk live in internal/menu and key handling is
// shared with the graphical front-end through internal/input.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function (key presses, window resizes, clock ticks, backend events).
//   - Key presses are translated into input.Key values by the bindings in
//     keys.go and handed to the input.Controller, which drives the menu or the
//     playback session depending on whether the menu is shown. While the find
//     prompt is open, keys go to the text input instead (find.go).
//
// Rendering:
//   - The grid geometry comes from menu.Layout with metrics measured in
//     terminal cells, so scrolling and paging behave exactly as in the
//     graphical front-end. Each tile is a bordered lipgloss cell holding its
//     title, duration, watched emblem and position bar.
//
// Backend interactions:
//   - A backend.Watcher reports rewritten index and cover files of the
//     directory on screen; Update waits for those events and reloads the
//     menu when the index changes.
package ui
