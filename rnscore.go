/*
Package rnscore implements the Residue Number System (RNS) arithmetic layer underpinning
ring-LWE-based homomorphic encryption schemes such as BFV and BGV. The library features:

  - A pure Go implementation enabling code-simplicity and easy builds.
  - Constant-time Barrett reduction kernels for secret residue data.
  - CRT composition into a fixed tower of wide unsigned integer types.
  - Approximate RNS basis conversion between independent moduli bases.

The scheme layers (key generation, encryption, evaluation) and the number theoretic
transform are external to this module and consume its typed API.
*/
package rnscore
