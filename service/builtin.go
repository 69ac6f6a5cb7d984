package service

// Builtin is this package's own module. It is scanned when
// RegisterAttributedServices is given no sources, and makes a fresh
// Collection resolvable as a Sink.
var Builtin = NewModule("github.com/toutaio/toutago-nasc-registrar/service",
	Type[Sink](),
	Type[*Collection](Mark(Transient)),
)
