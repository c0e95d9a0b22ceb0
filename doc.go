// Package texbridge manages GPU-backed render surfaces shared between a host
// UI runtime and a native rendering engine, and marshals native results
// across a boundary where the two sides share neither a type system nor a
// garbage collector.
//
// # Overview
//
// The module is organized leaves first:
//
//   - memview: bounds-checked typed views over a shared linear memory region
//   - decode: descriptor-driven decoders for glyph paths, shaped text, line
//     breaks, font features and script results
//   - gpuctx: one-time capability probe and per-surface context creation
//   - texture: render surface lifecycle (create, resize, invalidate,
//     recreate, remove)
//   - notify: completion routing from worker goroutines to the coordinator
//
// and the reference native services that exercise the calling contract:
//
//   - native/softrender: renderer handles backed by gogpu/gg
//   - textsvc: glyph outlines, shaping, line breaking and font features
//   - script: asynchronous script workspaces
//
// The host package converts lifecycle failures into stable error results
// for the platform glue.
//
// # Quick Start
//
//	dev, err := haldevice.New(&noop.API{})
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	renderers := softrender.New()
//	mgr := texture.NewManager(memregistry.New(), gpuctx.NewBroker(dev, renderers))
//	defer mgr.Close()
//
//	id, err := mgr.CreateSurface(256, 256)
//	if err != nil {
//	    return err
//	}
//	defer mgr.RemoveSurface(id)
//
//	_, err = mgr.Render(id, func(h native.Handle) error {
//	    return renderers.Clear(h, color.White)
//	})
//
// # Errors
//
// All packages report failures with the sentinels declared here
// (ErrInvalidArgument, ErrNotFound, ErrOutOfBounds, ErrContextCreation).
// Use errors.Is to classify them and Code to obtain a stable error code.
//
// # Logging
//
// texbridge produces no log output by default. Call SetLogger to enable it.
package texbridge
