// Package main provides the entry point for the authentication service of
// the ambulance field operations platform. It runs a Fiber based JSON API
// for credential and WhatsApp phone logins, bearer token lifecycle and role
// based authorization decisions. The service uses gorm for persistence and
// seeds the platform's role and permission catalog on first start.
package main
