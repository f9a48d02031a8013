// Package predict loads trained model artifacts and serves delay
// predictions over reconstructed feature vectors, including what-if sweeps
// across every known incident type. The trained model itself is an external
// collaborator behind the Model interface; this package owns the schema
// contract around it.
package predict
