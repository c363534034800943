// Package iidm holds the error kinds shared by the IIDM packages.
//
// The model itself lives in sub-packages: variant (per-scenario attribute
// storage), extension (typed side-tables attached to network elements),
// provider (name-keyed serializer registries), iidmxml (versioned XML
// import/export), network (the element graph), extensions (the concrete
// extension kinds), anonymizer (identifier obfuscation for exports) and
// config (file and environment settings).
package iidm
