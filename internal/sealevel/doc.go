// Package sealevel defines the yearly tide record shared by the crawl, animate,
// analyze and serve commands, together with its CSV codec, artifact naming and
// the interfaces the commands are wired against.
package sealevel
