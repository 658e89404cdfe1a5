// Package users stores bookshelf accounts in PostgreSQL.
//
// Repository resolves users with their group and the group's roles joined, which is the
// shape the auth package needs to build a permission gate. VerifyCredentials backs the
// login endpoint; Seeder creates the static roles and groups plus the initial ROOT
// accounts from a YAML file.
//
// Expected tables:
//
//	roles(id, name UNIQUE)
//	groups(id, name UNIQUE)
//	group_role(group_id, role_id, PRIMARY KEY (group_id, role_id))
//	users(id, email UNIQUE, password_hash, first_name, last_name, group_id,
//	      created_at, updated_at)
package users
