// Package tui implements the interactive terminal dashboard.
//
// The watch screen polls the connected appliance for status snapshots and
// renders them live, with key bindings for the common toggles. Values that
// were flipped optimistically after a command acknowledgment render as
// "(pending)" until the next status read confirms them.
package tui
